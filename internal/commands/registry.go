package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Rorical/tunneldesk/internal/eventbus"
)

var (
	ErrEmptyCommand   = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
)

// Command turns the arguments typed after its name into a UI event
type Command interface {
	Name() string
	Usage() string
	Description() string
	Parse(args []string) (eventbus.UIEvent, error)
}

// HelpEvent is produced by the help command. The UI handles it locally.
type HelpEvent struct{}

func (e HelpEvent) UIEvent() {}

// Registry manages available commands
type Registry struct {
	commands map[string]Command
	aliases  map[string]string
	mu       sync.RWMutex
}

// NewRegistry creates a new command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command to the registry
func (r *Registry) Register(cmd Command, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name()] = cmd
	for _, alias := range aliases {
		r.aliases[alias] = cmd.Name()
	}
}

// Get retrieves a command by name or alias
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, exists := r.commands[name]
	return cmd, exists
}

// List returns all registered commands sorted by name
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}

// Parse splits line into words and hands them to the named command
func (r *Registry) Parse(line string) (eventbus.UIEvent, error) {
	words, err := Split(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}

	name := strings.ToLower(words[0])
	cmd, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w %q, type help for a list", ErrUnknownCommand, name)
	}
	event, err := cmd.Parse(words[1:])
	if err != nil {
		return nil, fmt.Errorf("%s: %w (usage: %s)", cmd.Name(), err, cmd.Usage())
	}
	return event, nil
}

// Help renders one usage line per command
func (r *Registry) Help() string {
	var b strings.Builder
	cmds := r.List()
	width := 0
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage()))
	}
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "%-*s  %s\n", width, cmd.Usage(), cmd.Description())
	}
	return strings.TrimRight(b.String(), "\n")
}

// Split breaks a command line into words. Single and double quotes group
// words containing spaces, a backslash escapes the next character.
func Split(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
