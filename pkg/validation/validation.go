// Package validation turns binding failures into the French messages the
// forms display.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldLabels = map[string]string{
	"FirstName":       "le prénom",
	"LastName":        "le nom",
	"Email":           "l'adresse email",
	"NewEmail":        "la nouvelle adresse email",
	"ConfirmEmail":    "la confirmation de l'adresse email",
	"Sex":             "la civilité",
	"Specialty":       "la spécialité",
	"Password":        "le mot de passe",
	"NewPassword":     "le nouveau mot de passe",
	"CurrentPassword": "le mot de passe actuel",
	"ConfirmPassword": "la confirmation du mot de passe",
	"Token":           "le jeton",
}

// MessageFor renders one user-facing sentence for a binding error. Errors
// that are not field validations collapse into a generic message.
func MessageFor(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Formulaire invalide. Vérifiez les champs saisis."
	}

	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = "le champ " + strings.ToLower(fe.Field())
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Veuillez renseigner %s.", label)
	case "email":
		return "Adresse email invalide."
	case "min":
		return fmt.Sprintf("%s est trop court (minimum %s caractères).", capitalize(label), fe.Param())
	case "max":
		return fmt.Sprintf("%s est trop long (maximum %s caractères).", capitalize(label), fe.Param())
	case "len", "hexadecimal":
		return "Lien invalide."
	case "oneof":
		return fmt.Sprintf("Valeur invalide pour %s.", label)
	default:
		return "Formulaire invalide. Vérifiez les champs saisis."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
