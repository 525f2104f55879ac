// Package profile holds the persona prompt and every user-facing text of the
// service. The embedded default can be replaced by a YAML file at runtime so
// the copy can change without a rebuild.
package profile

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Service struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Owner   string `yaml:"owner"`
}

type Contact struct {
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	GitHub   string `yaml:"github"`
	LinkedIn string `yaml:"linkedin"`
}

type Messages struct {
	ChatFallback string `yaml:"chat_fallback"`
	LeadSent     string `yaml:"lead_sent"`
	LeadFailed   string `yaml:"lead_failed"`
	ContactAck   string `yaml:"contact_ack"`
}

type Profile struct {
	Service  Service  `yaml:"service"`
	Contact  Contact  `yaml:"contact"`
	Messages Messages `yaml:"messages"`
	Persona  string   `yaml:"persona"`
}

// Default returns the embedded profile.
func Default() *Profile {
	p := &Profile{}
	if err := yaml.Unmarshal(defaultYAML, p); err != nil {
		panic("embedded profile is invalid: " + err.Error())
	}
	return p
}

// Load returns the embedded profile overlaid with the YAML file at path.
// Keys absent from the file keep their default values.
func Load(path string) (*Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", path)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrapf(err, "parse profile %s", path)
	}
	if err := p.validate(); err != nil {
		return nil, errors.Wrapf(err, "profile %s", path)
	}

	return p, nil
}

func (p *Profile) validate() error {
	switch {
	case strings.TrimSpace(p.Persona) == "":
		return errors.New("persona must not be empty")
	case strings.TrimSpace(p.Messages.ChatFallback) == "":
		return errors.New("messages.chat_fallback must not be empty")
	case strings.TrimSpace(p.Messages.LeadFailed) == "":
		return errors.New("messages.lead_failed must not be empty")
	}
	return nil
}

// LeadFailureMessage renders messages.lead_failed with the direct contact details.
func (p *Profile) LeadFailureMessage() string {
	r := strings.NewReplacer("{email}", p.Contact.Email, "{phone}", p.Contact.Phone)
	return r.Replace(p.Messages.LeadFailed)
}
