package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/viguzmanp/boda-consu-seba/internal/store"
)

type SeedInvitation struct {
	Name string     `json:"name"`
	Type store.Type `json:"type"`
	URL  string     `json:"url"`
}

type SeedData struct {
	Invitations []SeedInvitation `json:"invitations"`
}

// Store is what seeding needs from the invitation store.
type Store interface {
	GetByName(ctx context.Context, name string) (*store.Invitation, error)
	Create(ctx context.Context, name string, t store.Type, url string) (*store.Invitation, error)
}

// LoadFromFile reads seed data from a JSON file and creates every invitation
// whose name is not in the store yet. Returns nil if path is empty (seeding
// disabled).
func LoadFromFile(ctx context.Context, path string, s Store) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file %s: %w", path, err)
	}

	var sd SeedData
	if err := json.Unmarshal(data, &sd); err != nil {
		return fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	log.WithField("count", len(sd.Invitations)).Info("seeding invitations from file")

	return Apply(ctx, sd, s)
}

func Apply(ctx context.Context, sd SeedData, s Store) error {
	for i, inv := range sd.Invitations {
		name := inv.Name
		if strings.TrimSpace(name) == "" || strings.TrimSpace(inv.URL) == "" {
			return fmt.Errorf("seed invitation %d: name and url are required", i)
		}

		existing, err := s.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("checking seed invitation %q: %w", name, err)
		}
		if existing != nil {
			log.WithField("name", name).Debug("seed: invitation already exists, skipping")
			continue
		}

		created, err := s.Create(ctx, name, inv.Type, inv.URL)
		if err != nil {
			return fmt.Errorf("seeding invitation %q: %w", name, err)
		}
		log.WithFields(log.Fields{"name": name, "id": created.ID}).Info("seeded invitation")
	}
	return nil
}
