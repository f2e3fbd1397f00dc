package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     Role   `yaml:"role"`
		Status   Status `yaml:"status"`
	} `yaml:"users"`
}

// SeedFromFile registers the accounts listed in a YAML file. Accounts that
// already exist are left untouched. It returns the number created.
//
//	users:
//	  - username: admin
//	    email: admin@example.com
//	    password: change-me-please
//	    role: admin
func (s *Service) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	return s.Seed(ctx, data)
}

// Seed registers the accounts in a YAML document
func (s *Service) Seed(ctx context.Context, data []byte) (int, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	created := 0
	for _, u := range sf.Users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		_, err := s.Register(ctx, RegisterInput{
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
			Role:     u.Role,
			Status:   u.Status,
		})
		if errors.Is(err, ErrDuplicateAccount) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed user %q: %w", u.Username, err)
		}
		created++
	}

	s.logger.Infof("Seeded %d users", created)
	return created, nil
}
