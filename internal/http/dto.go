package http

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/opensangha/memberhub/internal/domain"
)

// UserResponse is the member view returned by every endpoint that hands back
// a user. The password hash and TOTP secret never leave the server.
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	WorldlyName   string    `json:"worldly_name,omitempty"`
	SpiritualName string    `json:"spiritual_name,omitempty"`
	PreferredName string    `json:"preferred_name,omitempty"`
	DisplayName   string    `json:"display_name"`
	MFAEnabled    bool      `json:"mfa_enabled"`
	CreatedAt     time.Time `json:"created_at"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		WorldlyName:   u.WorldlyName,
		SpiritualName: u.SpiritualName,
		PreferredName: u.PreferredName,
		DisplayName:   u.DisplayName,
		MFAEnabled:    u.HasMFA(),
		CreatedAt:     u.CreatedAt,
	}
}

func newUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	return out
}

// TokenResponse carries a bearer token, optionally with the signed-in member.
type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user,omitempty"`
}

type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	WorldlyName   string `json:"worldly_name"`
	SpiritualName string `json:"spiritual_name"`
	PreferredName string `json:"preferred_name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.WorldlyName, validation.Length(0, 200)),
		validation.Field(&r.SpiritualName, validation.Length(0, 200)),
		validation.Field(&r.PreferredName, validation.Length(0, 200)),
	)
}

func (r RegisterRequest) names() domain.ProfileNames {
	return domain.ProfileNames{
		WorldlyName:   r.WorldlyName,
		SpiritualName: r.SpiritualName,
		PreferredName: r.PreferredName,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 128)),
	)
}

type TokenRequest struct {
	Token string `json:"token"`
}

func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type CreateInvitationRequest struct {
	Email string `json:"email"`
}

func (r CreateInvitationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type InvitationResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InvitedBy identifies the inviter on the public landing page without
// exposing the full member record.
type InvitedBy struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type InvitationInfoResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	InvitedBy InvitedBy `json:"invited_by"`
}

type CompleteInvitationRequest struct {
	Token         string `json:"token"`
	Password      string `json:"password"`
	WorldlyName   string `json:"worldly_name"`
	SpiritualName string `json:"spiritual_name"`
	PreferredName string `json:"preferred_name"`
}

func (r CompleteInvitationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.WorldlyName, validation.Length(0, 200)),
		validation.Field(&r.SpiritualName, validation.Length(0, 200)),
		validation.Field(&r.PreferredName, validation.Length(0, 200)),
	)
}

func (r CompleteInvitationRequest) names() domain.ProfileNames {
	return domain.ProfileNames{
		WorldlyName:   r.WorldlyName,
		SpiritualName: r.SpiritualName,
		PreferredName: r.PreferredName,
	}
}

type UpdateProfileRequest struct {
	WorldlyName   string `json:"worldly_name"`
	SpiritualName string `json:"spiritual_name"`
	PreferredName string `json:"preferred_name"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.WorldlyName, validation.Length(0, 200)),
		validation.Field(&r.SpiritualName, validation.Length(0, 200)),
		validation.Field(&r.PreferredName, validation.Length(0, 200)),
	)
}

func (r UpdateProfileRequest) names() domain.ProfileNames {
	return domain.ProfileNames{
		WorldlyName:   r.WorldlyName,
		SpiritualName: r.SpiritualName,
		PreferredName: r.PreferredName,
	}
}

type MFAEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type MFACodeRequest struct {
	Code string `json:"code"`
}

func (r MFACodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(6, 8), is.Digit),
	)
}

type CreateUnitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r CreateUnitRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

type UnitResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LeaderID    string    `json:"leader_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUnitResponse(u domain.Unit) UnitResponse {
	return UnitResponse{
		ID:          u.ID,
		Name:        u.Name,
		Description: u.Description,
		LeaderID:    u.LeaderID,
		CreatedAt:   u.CreatedAt,
	}
}

type UnitDetailResponse struct {
	UnitResponse
	Members []UserResponse `json:"members"`
}

type StartMentorshipRequest struct {
	MenteeID string `json:"mentee_id"`
}

func (r StartMentorshipRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MenteeID, validation.Required),
	)
}

type MentorshipResponse struct {
	ID        string     `json:"id"`
	MentorID  string     `json:"mentor_id"`
	MenteeID  string     `json:"mentee_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

func newMentorshipResponse(m domain.Mentorship) MentorshipResponse {
	return MentorshipResponse{
		ID:        m.ID,
		MentorID:  m.MentorID,
		MenteeID:  m.MenteeID,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
	}
}

type UploadResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUploadResponse(u domain.Upload) UploadResponse {
	return UploadResponse{
		ID:          u.ID,
		FileName:    u.FileName,
		ContentType: u.ContentType,
		SizeBytes:   u.SizeBytes,
		CreatedAt:   u.CreatedAt,
	}
}

type UploadLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
