// Package validation, the application's schema definitions. One schema per
// validated route; all of them are registered in main at process start.
package validation

// Schema names used when wiring routes.
const (
	SchemaLogin    = "login"
	SchemaSignup   = "signup"
	SchemaProfile  = "profile"
	SchemaNewMeals = "newmeals"
)

// DefaultSchemas returns the schemas for every validated route.
func DefaultSchemas() []Schema {
	return []Schema{
		{
			Name: SchemaLogin,
			Fields: []Field{
				{Name: "email", Kind: KindString, Required: true, Rules: "email"},
				// Login only requires presence; length rules apply at signup so
				// accounts created before a policy change can still log in.
				{Name: "password", Kind: KindString, Required: true, Rules: "min=1"},
			},
		},
		{
			Name: SchemaSignup,
			Fields: []Field{
				{Name: "email", Kind: KindString, Required: true, Rules: "email"},
				{Name: "password", Kind: KindString, Required: true, Rules: "min=8,max=72"},
			},
		},
		{
			// Profile updates: weight in kilograms, height in centimeters.
			// The BMI is derived server-side; a client-supplied value is
			// accepted for backward compatibility but recomputed on write.
			Name: SchemaProfile,
			Fields: []Field{
				{Name: "weight", Kind: KindNumber, Required: false, Rules: "gte=20,lte=400"},
				{Name: "height", Kind: KindNumber, Required: false, Rules: "gte=80,lte=260"},
				{Name: "imc", Kind: KindNumber, Required: false, Rules: "gte=1,lte=200"},
				{Name: "intolerances", Kind: KindIntList, Required: false, Rules: "gte=1"},
			},
		},
		{
			Name: SchemaNewMeals,
			Fields: []Field{
				{Name: "start_date", Kind: KindTime, Required: true},
			},
		},
	}
}
