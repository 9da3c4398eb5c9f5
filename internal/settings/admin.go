package settings

import (
	"context"
	"fmt"
)

// Admin is the admin screen's configuration snapshot.
type Admin struct {
	MerchantID  string `json:"merchant_id" validate:"max=128"`
	Gr4vyID     string `json:"gr4vy_id" validate:"max=128"`
	APIToken    string `json:"api_token"`
	Environment string `json:"server_environment" validate:"omitempty,oneof=sandbox production"`
	Timeout     string `json:"timeout" validate:"max=16"`
}

func (a Admin) values() map[Key]string {
	return map[Key]string{
		MerchantID:        a.MerchantID,
		Gr4vyID:           a.Gr4vyID,
		APIToken:          a.APIToken,
		ServerEnvironment: a.Environment,
		Timeout:           a.Timeout,
	}
}

// Admin reads the current admin settings.
func (s *Service) Admin(ctx context.Context) (Admin, error) {
	var a Admin
	fields := []struct {
		key Key
		dst *string
	}{
		{MerchantID, &a.MerchantID},
		{Gr4vyID, &a.Gr4vyID},
		{APIToken, &a.APIToken},
		{ServerEnvironment, &a.Environment},
		{Timeout, &a.Timeout},
	}
	for _, f := range fields {
		v, err := s.String(ctx, f.key)
		if err != nil {
			return Admin{}, fmt.Errorf("reading admin settings: %w", err)
		}
		*f.dst = v
	}
	return a, nil
}

// SaveAdmin writes every admin setting. An empty environment is stored as the default.
func (s *Service) SaveAdmin(ctx context.Context, a Admin) error {
	if a.Environment == "" {
		a.Environment = Default(ServerEnvironment)
	}
	return s.SetMany(ctx, a.values())
}

// Seed writes the non-empty fields of a for keys that have never been written.
// It returns the keys it wrote.
func (s *Service) Seed(ctx context.Context, a Admin) ([]Key, error) {
	missing := make(map[Key]string)
	for _, k := range AdminKeys {
		v := a.values()[k]
		if v == "" {
			continue
		}
		_, ok, err := s.store.Get(ctx, string(k))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", k, err)
		}
		if !ok {
			missing[k] = v
		}
	}
	if err := s.SetMany(ctx, missing); err != nil {
		return nil, err
	}

	seeded := make([]Key, 0, len(missing))
	for _, k := range AdminKeys {
		if _, ok := missing[k]; ok {
			seeded = append(seeded, k)
		}
	}
	return seeded, nil
}
