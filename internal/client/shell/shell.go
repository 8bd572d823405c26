// Package shell is the interactive front end of the dispatch client. It owns
// the session state (signed-in user, roster, reservations, profile) and
// renders it as plain text.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/client/auth"
	"github.com/markadai/taxidispatch/internal/client/profile"
	"github.com/markadai/taxidispatch/internal/client/reservations"
	"github.com/markadai/taxidispatch/internal/client/roster"
	"github.com/markadai/taxidispatch/internal/models"
)

const prompt = "taxi> "

const helpText = `Available commands:
  login <email|phone> <password>
  whoami
  drivers [query] [--status=All|Active|Inactive]
  drivers refresh
  stats
  reservations
  reserve <name> <phone> [Active|Pending|Completed]
  cancel <n>
  rate <n> <1-5>
  comment <n> <text>
  banner <n> [banner1|banner2|banner3]
  profile
  profile set <name|email|phone|marketing|push|dark> <value>
  exit`

// Authenticator is the login entry point the shell needs.
type Authenticator interface {
	Submit(models.LoginCredentials) <-chan auth.Outcome
}

// Config wires a Shell. Auth, Roster, Book and Settings are required.
type Config struct {
	Auth     Authenticator
	Roster   *roster.Roster
	Book     *reservations.Book
	Settings *profile.Settings
	// LoadDrivers supplies the roster on "drivers refresh".
	LoadDrivers func() []models.Driver
	// RequireAdmin restricts the driver panel to admin accounts.
	RequireAdmin bool
	Logger       *zap.Logger
}

// Shell reads commands from In and writes results to Out.
type Shell struct {
	cfg  Config
	in   io.Reader
	out  io.Writer
	user *models.User
	log  *zap.Logger
}

var errAdminOnly = errors.New("admin access required")

// New returns a shell reading from in and writing to out.
func New(cfg Config, in io.Reader, out io.Writer) *Shell {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LoadDrivers == nil {
		cfg.LoadDrivers = roster.SampleDrivers
	}
	return &Shell{cfg: cfg, in: in, out: out, log: log}
}

// User returns the signed-in user, if any.
func (s *Shell) User() (models.User, bool) {
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// Run processes commands until "exit" or end of input.
func (s *Shell) Run() {
	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return
		}
		args := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		s.Exec(args)
	}
}

// Exec runs a single command.
func (s *Shell) Exec(args []string) {
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "login":
		err = s.login(rest)
	case "whoami":
		s.whoami()
	case "drivers":
		err = s.drivers(rest)
	case "stats":
		err = s.stats()
	case "reservations":
		s.listReservations()
	case "reserve":
		err = s.reserve(rest)
	case "cancel":
		err = s.cancel(rest)
	case "rate":
		err = s.rate(rest)
	case "comment":
		err = s.comment(rest)
	case "banner":
		err = s.banner(rest)
	case "profile":
		err = s.profile(rest)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

// login submits the credentials and waits for the single outcome on this
// goroutine, which is the only one touching shell state.
func (s *Shell) login(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email|phone> <password>")
	}
	outcome := <-s.cfg.Auth.Submit(models.LoginCredentials{Identifier: args[0], Secret: args[1]})

	u, ok := outcome.User()
	if !ok {
		s.log.Info("login rejected", zap.Stringer("kind", outcome.Kind()))
		fmt.Fprintln(s.out, outcome.Message())
		return nil
	}
	s.user = &u
	s.log.Info("user signed in", zap.Int("user_id", u.ID), zap.String("typeu", u.TypeU))
	fmt.Fprintf(s.out, "Welcome, %s %s\n", u.Name, u.Apellido)
	return nil
}

func (s *Shell) whoami() {
	if s.user == nil {
		fmt.Fprintln(s.out, "Not signed in")
		return
	}
	u := s.user
	fmt.Fprintf(s.out, "#%d %s %s (%s, %s)\n", u.ID, u.Name, u.Apellido, u.TypeU, u.Status)
}

func (s *Shell) requireAdmin() error {
	if !s.cfg.RequireAdmin {
		return nil
	}
	if s.user == nil || s.user.TypeU != "admin" {
		return errAdminOnly
	}
	return nil
}

func (s *Shell) drivers(args []string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if len(args) == 1 && args[0] == "refresh" {
		s.cfg.Roster.Load(s.cfg.LoadDrivers())
		fmt.Fprintf(s.out, "Loaded %d drivers\n", s.cfg.Roster.Stats().Total)
		return nil
	}

	status := roster.FilterAll
	var terms []string
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, "--status="); ok {
			status = v
			continue
		}
		terms = append(terms, a)
	}
	if !roster.ValidFilter(status) {
		return fmt.Errorf("unknown status filter %q (want one of %s)", status, strings.Join(roster.FilterOptions, ", "))
	}

	list := s.cfg.Roster.Filter(strings.Join(terms, " "), status)
	if len(list) == 0 {
		fmt.Fprintln(s.out, "No drivers")
		return nil
	}
	for _, d := range list {
		online := "Offline"
		if d.IsOnline {
			online = "Online"
		}
		fmt.Fprintf(s.out, "%d. %s  %s  [%s] %s\n", d.Number, d.Name, d.Phone, d.Status, online)
	}
	return nil
}

func (s *Shell) stats() error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	st := s.cfg.Roster.Stats()
	fmt.Fprintf(s.out, "Total Drivers: %d\nOnline: %d\nActive: %d\n", st.Total, st.Online, st.Active)
	return nil
}

func (s *Shell) listReservations() {
	list := s.cfg.Book.List()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "No reservations")
		return
	}
	for i, r := range list {
		fmt.Fprintf(s.out, "%d) Reservation #%d  %s (%s)\n", i+1, r.Number, r.Status, reservations.StatusColor(r.Status))
		fmt.Fprintf(s.out, "   %s  %s  %s\n", r.Name, r.Phone, stars(r.Stars))
		if r.Comment != "" {
			fmt.Fprintf(s.out, "   Comment: %s\n", r.Comment)
		}
		if r.BannerImage != "" {
			fmt.Fprintf(s.out, "   Banner: %s\n", r.BannerImage)
		}
	}
}

func stars(n int) string {
	n = min(max(n, 0), reservations.MaxStars)
	return strings.Repeat("*", n) + strings.Repeat(".", reservations.MaxStars-n)
}

// reserve accepts a multi-word name: the last argument is the status when
// it is one, and the one before it is the phone.
func (s *Shell) reserve(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reserve <name> <phone> [status]")
	}
	status := string(models.ReservationPending)
	if last := args[len(args)-1]; len(args) >= 3 && slices.Contains(reservations.Statuses, last) {
		status = last
		args = args[:len(args)-1]
	}
	phone := args[len(args)-1]
	name := strings.Join(args[:len(args)-1], " ")

	r, err := s.cfg.Book.Add(name, phone, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added reservation #%d for %s\n", r.Number, r.Name)
	return nil
}

// position parses a 1-based list position.
func (s *Shell) position(arg string) (models.Reservation, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return models.Reservation{}, fmt.Errorf("invalid position %q", arg)
	}
	return s.cfg.Book.At(n - 1)
}

func (s *Shell) cancel(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: cancel <n>")
	}
	r, err := s.position(args[0])
	if err != nil {
		return err
	}
	s.cfg.Book.Delete(r.ID)
	fmt.Fprintf(s.out, "Removed reservation #%d\n", r.Number)
	return nil
}

func (s *Shell) rate(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: rate <n> <1-5>")
	}
	r, err := s.position(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return reservations.ErrInvalidStars
	}
	r, err = s.cfg.Book.Rate(r.ID, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Reservation #%d rated %s\n", r.Number, stars(r.Stars))
	return nil
}

func (s *Shell) comment(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: comment <n> <text>")
	}
	r, err := s.position(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if _, err := s.cfg.Book.Update(r.ID, reservations.Edit{Comment: &text}); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Reservation #%d updated\n", r.Number)
	return nil
}

func (s *Shell) banner(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: banner <n> [banner1|banner2|banner3]")
	}
	r, err := s.position(args[0])
	if err != nil {
		return err
	}
	var img string
	if len(args) == 2 {
		img = args[1]
	}
	if _, err := s.cfg.Book.Update(r.ID, reservations.Edit{BannerImage: &img}); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Reservation #%d updated\n", r.Number)
	return nil
}

func (s *Shell) profile(args []string) error {
	if len(args) == 0 {
		p := s.cfg.Settings.Get()
		fmt.Fprintf(s.out, "Name: %s\nEmail: %s\nPhone: %s\n", p.FullName, p.Email, p.Phone)
		fmt.Fprintf(s.out, "Marketing emails: %s\nPush notifications: %s\nDark mode: %s\n",
			onOff(p.ReceiveMarketingEmails), onOff(p.PushNotifications), onOff(p.DarkMode))
		return nil
	}
	if args[0] != "set" || len(args) < 3 {
		return errors.New("usage: profile set <field> <value>")
	}

	p := s.cfg.Settings.Get()
	value := strings.Join(args[2:], " ")
	switch args[1] {
	case "name":
		p.FullName = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "marketing", "push", "dark":
		on, err := parseToggle(value)
		if err != nil {
			return err
		}
		switch args[1] {
		case "marketing":
			p.ReceiveMarketingEmails = on
		case "push":
			p.PushNotifications = on
		default:
			p.DarkMode = on
		}
	default:
		return fmt.Errorf("unknown profile field %q", args[1])
	}

	if err := s.cfg.Settings.Update(p); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Profile updated")
	return nil
}

func parseToggle(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid toggle value %q", v)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
