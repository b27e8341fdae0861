package directory

import (
	"context"
	"sort"
)

// Static is an in-memory Directory built from fixed data. It backs tests and
// small deployments where the user set is part of the configuration.
type Static struct {
	users       map[int64]User
	roleMembers map[string][]int64
	entityTypes map[string]bool // name -> public
}

// NewStatic creates an empty Static directory.
func NewStatic() *Static {
	return &Static{
		users:       make(map[int64]User),
		roleMembers: make(map[string][]int64),
		entityTypes: make(map[string]bool),
	}
}

// AddUser registers a user and assigns it to the given roles.
func (s *Static) AddUser(u User, roles ...string) *Static {
	s.users[u.ID] = u
	for _, r := range roles {
		s.roleMembers[r] = append(s.roleMembers[r], u.ID)
	}
	return s
}

// AddRole registers a role name, possibly with no members yet.
func (s *Static) AddRole(name string) *Static {
	if _, ok := s.roleMembers[name]; !ok {
		s.roleMembers[name] = nil
	}
	return s
}

// AddEntityType registers an entity type name.
func (s *Static) AddEntityType(name string, public bool) *Static {
	s.entityTypes[name] = public
	return s
}

func (s *Static) UsersByRole(_ context.Context, role string) ([]User, error) {
	ids, ok := s.roleMembers[role]
	if !ok {
		return []User{}, nil
	}
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Static) UserByID(_ context.Context, id int64) (*User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Static) Roles(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(s.roleMembers))
	for r := range s.roleMembers {
		names = append(names, r)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Static) EntityTypes(_ context.Context, publicOnly bool) ([]string, error) {
	names := make([]string, 0, len(s.entityTypes))
	for t, public := range s.entityTypes {
		if publicOnly && !public {
			continue
		}
		names = append(names, t)
	}
	sort.Strings(names)
	return names, nil
}
