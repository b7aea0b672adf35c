package opera_archiver

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	ErrDuplicateProvider = errors.New("duplicate provider name")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrNoMatch           = errors.New("no provider matched the input")
	ErrUnknownProvider   = errors.New("unknown provider")
)

type MatchFunc = func(Input) (Source, error)

// A Provider turns inputs for one site into a Source, or returns an error saying why it can't.
type Provider struct {
	Name  string
	Match MatchFunc
	// LoginHint is appended to the error when the detail page never requested a manifest, which almost always means the
	// browser isn't logged in.
	LoginHint string
}

// A Match is a Source together with the Provider that produced it.
type Match struct {
	ProviderName string
	LoginHint    string
	Source       Source
}

// ProviderRegistry holds named providers in the order they were added. The zero value is empty and ready to use.
type ProviderRegistry struct {
	ordered []*Provider
	byName  map[string]*Provider
}

func (r *ProviderRegistry) lookup(name string) (*Provider, error) {
	if p, ok := r.byName[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Add registers p, which needs a unique Name and a Match function.
func (r *ProviderRegistry) Add(p Provider) error {
	if p.Name == "" || p.Match == nil {
		return ErrInvalidProvider
	}
	if _, exists := r.byName[p.Name]; exists {
		return ErrDuplicateProvider
	}
	if r.byName == nil {
		r.byName = make(map[string]*Provider)
	}
	r.byName[p.Name] = &p
	r.ordered = append(r.ordered, &p)
	return nil
}

// MustAdd is Add for registries built at startup, where a bad provider is a programming error.
func (r *ProviderRegistry) MustAdd(p Provider) {
	if err := r.Add(p); err != nil {
		panic(fmt.Errorf("failed to add provider %q: %w", p.Name, err))
	}
}

// List returns provider names in the order Match tries them.
func (r *ProviderRegistry) List() []string {
	names := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		names[i] = p.Name
	}
	return names
}

// Match returns the first provider, in registration order, that accepts in. Otherwise the error wraps ErrNoMatch and lists
// each provider's reason.
func (r *ProviderRegistry) Match(in Input) (*Match, error) {
	result := multierror.Append(nil, ErrNoMatch)
	for _, p := range r.ordered {
		source, err := p.Match(in)
		if err != nil {
			result = multierror.Append(result, multierror.Prefix(err, fmt.Sprintf("[%v]", p.Name)))
			continue
		}
		if source != nil {
			return p.match(source), nil
		}
	}
	return nil, result
}

// MatchWith is Match restricted to the named provider.
func (r *ProviderRegistry) MatchWith(name string, in Input) (*Match, error) {
	p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	source, err := p.Match(in)
	if err != nil {
		return nil, fmt.Errorf("%w: [%v] %v", ErrNoMatch, p.Name, err)
	}
	if source == nil {
		return nil, ErrNoMatch
	}
	return p.match(source), nil
}

func (p *Provider) match(source Source) *Match {
	return &Match{ProviderName: p.Name, LoginHint: p.LoginHint, Source: source}
}
