package prompt

import "strings"

// Role identifies who speaks a message in a chat template. The three
// well-known roles get constants; anything else round-trips verbatim.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
)

// ParseRole normalizes a raw role string, mapping common aliases onto the
// known roles and preserving unknown values as-is.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "system":
		return RoleSystem
	case "human", "user":
		return RoleHuman
	case "ai", "assistant", "model":
		return RoleAI
	default:
		return Role(strings.TrimSpace(s))
	}
}

// Known reports whether the role is one of the three template roles.
func (r Role) Known() bool {
	switch r {
	case RoleSystem, RoleHuman, RoleAI:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Message is one role-tagged template message.
type Message struct {
	Role    Role   `yaml:"role"`
	Content string `yaml:"content"`
}

// Template is an ordered sequence of role-tagged message templates plus
// registry metadata. Treated as immutable once loaded or pulled.
type Template struct {
	Name        string    `yaml:"name"`
	Owner       string    `yaml:"owner,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Techniques  []string  `yaml:"techniques_applied,omitempty"`
	Messages    []Message `yaml:"messages"`
}

// SystemMessages returns the system messages in template order.
func (t *Template) SystemMessages() []Message {
	if t == nil {
		return nil
	}
	var out []Message
	for _, m := range t.Messages {
		if ParseRole(string(m.Role)) == RoleSystem {
			out = append(out, m)
		}
	}
	return out
}
