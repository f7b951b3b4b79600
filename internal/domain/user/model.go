package user

import "fmt"

// Principal is an already-verified caller identity supplied by the account
// collaborator. The core never authenticates.
type Principal struct {
	UserID  string
	IsAdmin bool
}

func (p Principal) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("principal user id is required")
	}
	return nil
}
