package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	domainSettings "github.com/recruiterhub/wabot/domains/settings"
	pkgError "github.com/recruiterhub/wabot/pkg/error"
)

func ValidateSaveSettings(ctx context.Context, request domainSettings.DTO) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.SystemPrompt, validation.Length(0, 8000)),
		validation.Field(&request.Tone, validation.Length(0, 500)),
		validation.Field(&request.SiteURL, validation.Length(0, 2000), is.URL),
		validation.Field(&request.CandidateLink, validation.Length(0, 2000), is.URL),
		validation.Field(&request.AgencyLink, validation.Length(0, 2000), is.URL),
		validation.Field(&request.AdminPhone, validation.Length(0, 20), is.Digit),
		validation.Field(&request.FollowupMessage, validation.Length(0, 2000)),
		validation.Field(&request.FollowupDelayHours, validation.Min(1), validation.Max(720)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
