package users

import "context"

// Store persists user profiles and the report back references.
// AddReportCreated and AddReportConfirmed are set unions and do nothing for
// an unknown user.
type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	AddReportCreated(ctx context.Context, userID, reportID string) error
	AddReportConfirmed(ctx context.Context, userID, reportID string) error
}
