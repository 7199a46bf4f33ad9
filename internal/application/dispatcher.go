package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bnema/portainer-notifier/internal/domain"
	"github.com/bnema/portainer-notifier/internal/ports"
)

const GenericCommandErrorReply = "There was an error while executing this command!"

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, interaction ports.Interaction) error
}

// Dispatcher routes slash-command invocations to the handler registered under their name.
type Dispatcher struct {
	commands map[string]Command
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, commands ...Command) (*Dispatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := make(map[string]Command, len(commands))
	for _, command := range commands {
		name := command.Name()
		if name == "" {
			return nil, fmt.Errorf("register command: empty name")
		}
		if _, ok := registry[name]; ok {
			return nil, fmt.Errorf("register command %q: duplicate name", name)
		}
		registry[name] = command
	}

	return &Dispatcher{commands: registry, logger: logger}, nil
}

// Commands returns the registered commands sorted by name.
func (d *Dispatcher) Commands() []Command {
	commands := make([]Command, 0, len(d.commands))
	for _, command := range d.commands {
		commands = append(commands, command)
	}
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].Name() < commands[j].Name()
	})

	return commands
}

// Dispatch runs the handler for interaction. Unknown commands are logged and ignored. Handler
// errors and panics are logged and answered with a generic ephemeral reply; they never propagate.
func (d *Dispatcher) Dispatch(ctx context.Context, interaction ports.Interaction) {
	name := interaction.CommandName()

	command, ok := d.commands[name]
	if !ok {
		d.logger.Error("no command matching name was found", "command", name, "error", domain.ErrUnknownCommand)
		return
	}

	err := d.execute(ctx, command, interaction)
	if err == nil {
		return
	}

	dispatchErr := &domain.CommandDispatchError{Command: name, Err: err}
	d.logger.Error("command failed", "command", name, "user", interaction.User(), "error", dispatchErr)

	if replyErr := interaction.Reply(ctx, GenericCommandErrorReply, true); replyErr != nil {
		d.logger.Error("send command error reply", "command", name, "error", replyErr)
	}
}

func (d *Dispatcher) execute(ctx context.Context, command Command, interaction ports.Interaction) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return command.Execute(ctx, interaction)
}
