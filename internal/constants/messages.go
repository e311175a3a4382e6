package constants

// User-facing messages. The UI is French; wording is part of the
// product contract (several flows rely on byte-identical responses).
const (
	MsgCSRFInvalid = "Session expirée ou jeton CSRF invalide."

	// Login. The same string is used for an unknown email and for a wrong
	// password so that responses do not reveal whether an account exists.
	MsgInvalidCredentials  = "Email ou mot de passe incorrect."
	MsgAccountNotActivated = "Votre compte n'est pas encore activé. Vérifiez vos emails."

	// Registration
	MsgEmailTaken          = "Cette adresse email est déjà utilisée."
	MsgRegisterSuccess     = "Compte créé ! Vérifiez votre email pour activer votre compte."
	MsgRegisterMailFailure = "Compte créé mais l'email de vérification n'a pas pu être envoyé. Contactez le support."

	// Validation
	MsgPasswordsDiffer = "Mots de passe différents."
	MsgWeakPassword    = "Le mot de passe doit contenir au moins 12 caractères, avec majuscules, minuscules, chiffres et un caractère spécial."
	MsgEmailsDiffer    = "Les adresses email ne correspondent pas."
	MsgSameEmail       = "La nouvelle adresse email est identique à l'ancienne."
	MsgCurrentPwdWrong = "Mot de passe incorrect."

	// Password reset. The neutral message must be identical whether or not
	// the account exists.
	MsgResetNeutral     = "Si un compte existe à cette adresse mail, un lien de réinitialisation a été envoyé.\nN'oubliez pas de vérifier votre courrier indésirable."
	MsgResetThrottled   = "Si un compte existe à cette adresse mail, un lien de réinitialisation a été envoyé.\nVeuillez attendre avant de refaire une demande."
	MsgResetLinkInvalid = "Lien de réinitialisation invalide ou expiré."
	MsgResetLinkMissing = "Lien invalide."

	// Email verification
	MsgVerifyTokenMissing = "Token de vérification manquant."
	MsgVerifyTokenInvalid = "Token de vérification invalide ou expiré."
	MsgVerifyAlreadyDone  = "Votre adresse email est déjà vérifiée. Vous pouvez vous connecter."
	MsgVerifySuccess      = "Votre adresse email a été vérifiée avec succès ! Vous pouvez maintenant vous connecter."
	MsgResendNeutral      = "Si cette adresse email est enregistrée et non vérifiée, un email a été envoyé."
	MsgResendAlreadyDone  = "Cette adresse email est déjà vérifiée."
	MsgResendMailFailure  = "Erreur lors de l'envoi de l'email."

	// Profile
	MsgPasswordUpdated   = "Votre mot de passe a été mis à jour."
	MsgEmailUpdated      = "Adresse mise à jour. Un email de vérification a été envoyé à votre nouvelle adresse."
	MsgEmailUpdateNoMail = "Adresse mise à jour mais email non envoyé."
	MsgGenericRetryLater = "Une erreur technique est survenue. Veuillez réessayer."
)
