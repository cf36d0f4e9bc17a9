package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/repository/memory"
)

var errPlatform = errors.New("platform unavailable")

type sentMessage struct {
	To      string
	Message Message
}

type fakePlatform struct {
	mu sync.Mutex

	seq             int
	roles           map[string]string
	userRoles       map[string]map[string]bool
	dms             []sentMessage
	posts           []sentMessage
	edits           []string
	deletedMessages []string
	channels        map[string][]string
	deletedChannels []string

	failDM          map[string]bool
	failCreateRole  bool
	failChannel     bool
	failPost        bool
	failDeleteChan  bool
	failGrantAccess bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:     make(map[string]string),
		userRoles: make(map[string]map[string]bool),
		channels:  make(map[string][]string),
		failDM:    make(map[string]bool),
	}
}

func (p *fakePlatform) id(prefix string) string {
	p.seq++
	return fmt.Sprintf("%s%d", prefix, p.seq)
}

func (p *fakePlatform) CreateRole(ctx context.Context, guildID, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCreateRole {
		return "", errPlatform
	}
	id := p.id("role")
	p.roles[id] = name
	return id, nil
}

func (p *fakePlatform) DeleteRole(ctx context.Context, guildID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.roles, roleID)
	return nil
}

func (p *fakePlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.userRoles[userID] == nil {
		p.userRoles[userID] = make(map[string]bool)
	}
	p.userRoles[userID][roleID] = true
	return nil
}

func (p *fakePlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.userRoles[userID], roleID)
	return nil
}

func (p *fakePlatform) SendDirect(ctx context.Context, userID string, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failDM[userID] {
		return errPlatform
	}
	p.dms = append(p.dms, sentMessage{To: userID, Message: msg})
	return nil
}

func (p *fakePlatform) PostMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failPost {
		return "", errPlatform
	}
	p.posts = append(p.posts, sentMessage{To: channelID, Message: msg})
	return p.id("msg"), nil
}

func (p *fakePlatform) EditMessage(ctx context.Context, channelID, messageID string, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, messageID)
	return nil
}

func (p *fakePlatform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletedMessages = append(p.deletedMessages, messageID)
	return nil
}

func (p *fakePlatform) CreatePrivateChannel(ctx context.Context, guildID, name string, memberIDs []string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failChannel {
		return "", errPlatform
	}
	id := p.id("chan")
	p.channels[id] = append([]string(nil), memberIDs...)
	return id, nil
}

func (p *fakePlatform) GrantChannelAccess(ctx context.Context, channelID, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failGrantAccess {
		return errPlatform
	}
	p.channels[channelID] = append(p.channels[channelID], userID)
	return nil
}

func (p *fakePlatform) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failDeleteChan {
		return errPlatform
	}
	delete(p.channels, channelID)
	p.deletedChannels = append(p.deletedChannels, channelID)
	return nil
}

func (p *fakePlatform) hasRole(userID, roleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userRoles[userID][roleID]
}

func (p *fakePlatform) dmsTo(userID string) []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Message
	for _, d := range p.dms {
		if d.To == userID {
			out = append(out, d.Message)
		}
	}
	return out
}

// recordingNotifier delivers synchronously so tests can assert on what was sent.
type recordingNotifier struct {
	mu            sync.Mutex
	notes         []Notification
	announcements []string
}

func (n *recordingNotifier) Notify(ctx context.Context, notes ...Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, notes...)
}

func (n *recordingNotifier) Announce(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.announcements = append(n.announcements, text)
}

func (n *recordingNotifier) directTo(userID string) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Notification
	for _, note := range n.notes {
		if note.UserID == userID {
			out = append(out, note)
		}
	}
	return out
}

type deferredCall struct {
	delay time.Duration
	name  string
	fn    func()
}

type fakeDeferrer struct {
	mu    sync.Mutex
	calls []deferredCall
}

func (d *fakeDeferrer) After(delay time.Duration, name string, fn func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, deferredCall{delay: delay, name: name, fn: fn})
	return nil
}

func (d *fakeDeferrer) runAll() {
	d.mu.Lock()
	calls := d.calls
	d.calls = nil
	d.mu.Unlock()
	for _, c := range calls {
		c.fn()
	}
}

type harness struct {
	ctx      context.Context
	svc      *Services
	store    *repository.GormStore
	platform *fakePlatform
	notifier *recordingNotifier
	deferrer *fakeDeferrer
}

const (
	testGuild        = "guild1"
	testScrimChannel = "scrims"
)

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := repository.Open("sqlite", filepath.Join(t.TempDir(), "scrimbot.db"))
	require.NoErrorf(t, err, "Open failed: %s", err)
	require.NoError(t, repository.Migrate(db))

	h := &harness{
		ctx:      context.Background(),
		store:    repository.NewGormStore(db),
		platform: newFakePlatform(),
		notifier: &recordingNotifier{},
		deferrer: &fakeDeferrer{},
	}
	h.svc = New(h.store, h.platform, h.notifier, h.deferrer, memory.NewRepository(), Options{
		Location:           time.UTC,
		ChannelDeleteDelay: 5 * time.Second,
		ReminderLead:       time.Hour,
		ReminderWindow:     5 * time.Minute,
		SettingsTTL:        time.Minute,
	})
	require.NoError(t, h.svc.Settings.SetScrimChannel(h.ctx, testGuild, true, testScrimChannel))
	return h
}

// team creates a team led by leader with the given members joined through invites.
func (h *harness) team(t *testing.T, name, leader string, members ...string) *models.Team {
	t.Helper()
	res, err := h.svc.Roster.CreateTeam(h.ctx, testGuild, leader, name)
	require.NoError(t, err)

	for _, m := range members {
		inv, err := h.svc.Roster.InviteMember(h.ctx, testGuild, leader, m, "user-"+m)
		require.NoError(t, err)
		_, err = h.svc.Roster.AcceptInvite(h.ctx, inv.InviteID, m, "user-"+m)
		require.NoError(t, err)
	}

	team, err := h.store.FindTeamByID(h.ctx, res.Team.ID)
	require.NoError(t, err)
	return team
}

func (h *harness) openScrim(t *testing.T, actor string) *models.Scrim {
	t.Helper()
	res, err := h.svc.Scrims.CreateScrim(h.ctx, testGuild, actor, CreateScrimInput{
		Date:  "2026-06-01",
		Time:  "8pm",
		Games: "5",
	})
	require.NoError(t, err)
	return res.Scrim
}

// acceptedScrim sets up Alpha (a1 + a2) challenging Bravo (b1 + b2) and accepts it.
func (h *harness) acceptedScrim(t *testing.T) *models.Scrim {
	t.Helper()
	h.team(t, "Alpha", "a1", "a2")
	h.team(t, "Bravo", "b1", "b2")
	scrim := h.openScrim(t, "a1")

	res, err := h.svc.Scrims.AcceptScrim(h.ctx, testGuild, "b1", scrim.ScrimID)
	require.NoError(t, err)
	return res.Scrim
}

func (h *harness) reload(t *testing.T, scrimID string) *models.Scrim {
	t.Helper()
	scrim, err := h.store.FindScrim(h.ctx, testGuild, scrimID)
	require.NoError(t, err)
	return scrim
}
