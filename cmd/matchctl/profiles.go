// cmd/matchctl/profiles.go
package main

import (
	"context"
	"fmt"

	"unimatch/internal/matching"
	"unimatch/internal/models"
)

// profileDump is the on-disk shape of --profiles: one entry per user.
type profileDump struct {
	Users []struct {
		User      *models.UserProfile      `json:"user"`
		Academic  *models.AcademicProfile  `json:"academic,omitempty"`
		Financial *models.FinancialProfile `json:"financial,omitempty"`
	} `json:"users"`
}

var _ matching.ProfileStore = (*fileProfiles)(nil)

// fileProfiles is a matching.ProfileStore over a profile dump.
type fileProfiles struct {
	users     map[string]*models.UserProfile
	academic  map[string]*models.AcademicProfile
	financial map[string]*models.FinancialProfile
}

func newFileProfiles() *fileProfiles {
	return &fileProfiles{
		users:     map[string]*models.UserProfile{},
		academic:  map[string]*models.AcademicProfile{},
		financial: map[string]*models.FinancialProfile{},
	}
}

func loadFileProfiles(path string) (*fileProfiles, error) {
	var dump profileDump
	if err := readJSONFile(path, &dump); err != nil {
		return nil, err
	}

	p := newFileProfiles()
	for i, entry := range dump.Users {
		if entry.User == nil || entry.User.ID == "" {
			return nil, fmt.Errorf("parse %s: user %d has no id", path, i)
		}
		id := entry.User.ID
		p.users[id] = entry.User
		if entry.Academic != nil {
			p.academic[id] = entry.Academic
		}
		if entry.Financial != nil {
			p.financial[id] = entry.Financial
		}
	}
	return p, nil
}

func (p *fileProfiles) UserProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	u, ok := p.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", matching.ErrSubjectNotFound, userID)
	}
	return u, nil
}

func (p *fileProfiles) AcademicProfile(_ context.Context, userID string) (*models.AcademicProfile, error) {
	return p.academic[userID], nil
}

func (p *fileProfiles) FinancialProfile(_ context.Context, userID string) (*models.FinancialProfile, error) {
	return p.financial[userID], nil
}
