package httpapi

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wtfmahe/PeeP/internal/backend"
	"github.com/wtfmahe/PeeP/internal/realtime"
)

// realtimeScope limits websocket subscribers to rows they could read
// directly: their own incoming peeps and the statuses of accepted friends.
func realtimeScope(friends FriendService) realtime.Authorizer {
	return func(r *http.Request, filter realtime.Filter) (func(realtime.Change) bool, error) {
		caller := accountID(r.Context())

		switch filter.Table {
		case backend.PeepTable:
			if filter.Column != "to_user_id" || filter.Value != caller.String() {
				return nil, realtime.ErrForbidden
			}
			return nil, nil

		case backend.StatusTable:
			list, err := friends.ListFriends(r.Context(), caller)
			if err != nil {
				return nil, fmt.Errorf("failed to load friends: %w", err)
			}
			allowed := make(map[uuid.UUID]struct{}, len(list)+1)
			allowed[caller] = struct{}{}
			for _, f := range list {
				allowed[f.ID] = struct{}{}
			}
			return func(c realtime.Change) bool {
				var row struct {
					UserID uuid.UUID `json:"user_id"`
				}
				if err := c.Decode(&row); err != nil {
					return false
				}
				_, ok := allowed[row.UserID]
				return ok
			}, nil
		}
		return nil, realtime.ErrForbidden
	}
}
