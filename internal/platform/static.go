package platform

import "context"

// StaticRoles is a RoleChecker backed by a fixed commissioner list, used by
// the CLI surface where there is no chat platform to ask.
type StaticRoles struct {
	Commissioners []string
}

func (s StaticRoles) IsCommissioner(_ context.Context, userID, _ string) (bool, error) {
	for _, id := range s.Commissioners {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

// OpenPermissions lets every actor see every channel. CLI sessions run as a
// single trusted operator.
type OpenPermissions struct{}

func (OpenPermissions) CanSee(context.Context, string, string) (bool, error) {
	return true, nil
}
