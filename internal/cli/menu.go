// Package cli implements the interactive player manager menu.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/foot-player/pkg/player"
	"github.com/Sternrassler/foot-player/pkg/store"
)

// Positions offered to generated players.
var Positions = []string{"goalkeeper", "defender", "midfielder", "forward"}

// Menu reads choices line by line and reports in plain text.
type Menu struct {
	store  store.Store
	in     *bufio.Scanner
	out    io.Writer
	faker  *gofakeit.Faker
	logger zerolog.Logger
}

// Option configures a Menu.
type Option func(*Menu)

// WithFaker replaces the random generator used for fake players.
func WithFaker(f *gofakeit.Faker) Option {
	return func(m *Menu) { m.faker = f }
}

// WithLogger sets the logger for store failures.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Menu) { m.logger = l }
}

// New creates a menu over s.
func New(s store.Store, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		store:  s,
		in:     bufio.NewScanner(in),
		out:    out,
		faker:  gofakeit.New(0),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// errQuit ends the loop when input is exhausted.
var errQuit = errors.New("input closed")

// Run shows the menu until the user quits, input ends or ctx is done.
// Only context errors are returned; everything else is reported to the
// user and the loop continues.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.showMenu()

		choice, err := m.prompt("Your choice: ")
		if err != nil {
			m.println("Bye")
			return nil
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.add(ctx)
		case "2":
			err = m.addFake(ctx)
		case "3":
			_, err = m.list(ctx)
		case "4":
			err = m.update(ctx)
		case "5":
			err = m.delete(ctx)
		case "0":
			m.println("Bye")
			return nil
		default:
			m.println("Invalid choice")
			continue
		}

		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			m.println("Bye")
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			m.logger.Error().Err(err).Str("choice", choice).Msg("Menu action failed")
			m.printf("Error: %v\n", err)
		}
	}
}

func (m *Menu) showMenu() {
	m.println("")
	m.println("FOOT PLAYER MANAGER")
	m.println("1. Add a player")
	m.println("2. Add a fake player")
	m.println("3. List players")
	m.println("4. Update a player")
	m.println("5. Delete a player")
	m.println("0. Quit")
}

func (m *Menu) add(ctx context.Context) error {
	name, err := m.prompt("Name: ")
	if err != nil {
		return err
	}
	position, err := m.prompt("Position: ")
	if err != nil {
		return err
	}
	ageText, err := m.prompt("Age: ")
	if err != nil {
		return err
	}
	club, err := m.prompt("Club (optional): ")
	if err != nil {
		return err
	}

	age, err := strconv.Atoi(strings.TrimSpace(ageText))
	if err != nil {
		m.println("Invalid age")
		return nil
	}

	p, err := m.store.Create(ctx, player.Player{
		Name:     name,
		Position: position,
		Age:      age,
		Club:     player.StringPtr(club),
	})
	if errors.Is(err, store.ErrInvalid) {
		m.printf("Rejected: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	m.printf("Player added: %s\n", p.Name)
	return nil
}

// FakePlayer generates a random valid player.
func FakePlayer(f *gofakeit.Faker) player.Player {
	return player.Player{
		Name:        f.Name(),
		Position:    f.RandomString(Positions),
		Age:         f.Number(18, 40),
		Club:        player.StringPtr(f.City() + " FC"),
		Nationality: player.StringPtr(f.Country()),
	}
}

func (m *Menu) addFake(ctx context.Context) error {
	p, err := m.store.Create(ctx, FakePlayer(m.faker))
	if err != nil {
		return err
	}
	m.printf("Fake player added: %s\n", p.Name)
	return nil
}

func (m *Menu) list(ctx context.Context) ([]player.Player, error) {
	players, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		m.println("No players stored")
		return players, nil
	}
	for i, p := range players {
		m.printf("%d. %s\n", i+1, p)
	}
	return players, nil
}

// pick lists the players and asks for a number. ok is false when the
// answer does not name a listed player.
func (m *Menu) pick(ctx context.Context, question string) (p player.Player, ok bool, err error) {
	players, err := m.list(ctx)
	if err != nil || len(players) == 0 {
		return player.Player{}, false, err
	}

	answer, err := m.prompt(question)
	if err != nil {
		return player.Player{}, false, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(answer))
	if convErr != nil || n < 1 || n > len(players) {
		m.println("Invalid choice")
		return player.Player{}, false, nil
	}
	return players[n-1], true, nil
}

func (m *Menu) update(ctx context.Context) error {
	current, ok, err := m.pick(ctx, "Number of the player to update: ")
	if err != nil || !ok {
		return err
	}

	var patch player.Patch
	name, err := m.prompt(fmt.Sprintf("Name (%s): ", current.Name))
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(name); v != "" {
		patch.Name = &v
	}

	position, err := m.prompt(fmt.Sprintf("Position (%s): ", current.Position))
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(position); v != "" {
		patch.Position = &v
	}

	ageText, err := m.prompt(fmt.Sprintf("Age (%d): ", current.Age))
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(ageText); v != "" {
		age, convErr := strconv.Atoi(v)
		if convErr != nil {
			m.println("Invalid age")
			return nil
		}
		patch.Age = &age
	}

	if patch.IsEmpty() {
		m.println("Nothing to update")
		return nil
	}

	updated, err := m.store.Update(ctx, current.ID, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.println("Player not found")
		return nil
	case errors.Is(err, store.ErrInvalid):
		m.printf("Rejected: %v\n", err)
		return nil
	case err != nil:
		return err
	}
	m.printf("Player updated: %s\n", updated)
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	target, ok, err := m.pick(ctx, "Number of the player to delete: ")
	if err != nil || !ok {
		return err
	}

	err = m.store.Delete(ctx, target.ID)
	if errors.Is(err, store.ErrNotFound) {
		m.println("Player not found")
		return nil
	}
	if err != nil {
		return err
	}
	m.printf("Player deleted: %s\n", target.Name)
	return nil
}

func (m *Menu) prompt(question string) (string, error) {
	fmt.Fprint(m.out, question)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return m.in.Text(), nil
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
