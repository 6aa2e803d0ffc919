package alert

import (
	"errors"

	"github.com/wtfmahe/PeeP/internal/peep"
	"github.com/wtfmahe/PeeP/internal/push"
	"github.com/wtfmahe/PeeP/internal/repositories"
	"github.com/wtfmahe/PeeP/internal/sensor"
	"github.com/wtfmahe/PeeP/internal/services"
	"github.com/wtfmahe/PeeP/internal/utils"
)

// Ordered most specific first: several of these wrap ErrConflict or
// ErrNotFound.
var messages = []struct {
	err  error
	text string
}{
	{sensor.ErrPermissionDenied, "Permission Needed: allow usage access to peep friends."},
	{peep.ErrPeepFailed, "Could not peep friend"},
	{repositories.ErrUsernameTaken, "Username already taken"},
	{repositories.ErrEmailTaken, "Email already registered"},
	{services.ErrAlreadyFriends, "Already friends!"},
	{services.ErrRequestPending, "Friend request already pending"},
	{services.ErrSelfFriend, "You can't add yourself as a friend"},
	{services.ErrUserNotFound, "User not found"},
	{services.ErrRequestNotFound, "Friend request not found"},
	{services.ErrInvalidCredentials, "Invalid email or password"},
	{services.ErrInvalidToken, "Please sign in again"},
	{services.ErrInvalidEmail, "Please enter a valid email"},
	{services.ErrInvalidUsername, "Please enter a username"},
	{utils.ErrPasswordTooShort, "Password must be at least 6 characters"},
	{push.ErrNoPushToken, "No push token for target user"},
	{repositories.ErrNotFound, "Not found"},
	{repositories.ErrConflict, "Already exists"},
}

// Message turns an error into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return "Something went wrong"
}
