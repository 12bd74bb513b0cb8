package auth

import "log/slog"

type authenticator struct {
	adminID int64
}

func NewAuthenticator(adminID int64) *authenticator {
	slog.Info("telegram admin user ID", "user_id", adminID)

	return &authenticator{
		adminID: adminID,
	}
}

func (a *authenticator) IsAdmin(userID int64) bool {
	return a.adminID != 0 && userID == a.adminID
}
