package goadmin

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"

	core "github.com/goliatone/go-agridash/components/dashboard"
	activitypkg "github.com/goliatone/go-agridash/pkg/activity"
	dashboardpkg "github.com/goliatone/go-agridash/pkg/dashboard"
)

const (
	defaultMenuCode  = "admin.main"
	defaultRoute     = "/admin/dashboard"
	alertBadgeItemID = "overview"
)

var errMissingService = errors.New("goadmin: dashboard service is required when enabled")

// MenuBuilder is the host's navigation store.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem is one dashboard section linked from the host menu.
// The overview entry carries the unread alert count as Badge.
type MenuItem struct {
	ID       string
	Label    string
	Route    string
	Icon     string
	Position int
	Badge    int
}

// Config mounts the agricultural dashboard into a go-admin style shell.
// Sections limits which sidebar entries are mirrored; empty mirrors all of them.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	Route           string
	Sections        []string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

type Admin struct {
	cfg Config
}

func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errMissingService
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = defaultMenuCode
	}
	if cfg.Route == "" {
		cfg.Route = defaultRoute
	}
	for _, id := range cfg.Sections {
		if _, err := core.ParseShellTab(id); err != nil {
			return nil, fmt.Errorf("goadmin: %w", err)
		}
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard returns the service, or nil when the dashboard is disabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// MenuItems lists the sidebar sections as host menu entries linking to ?tab=<id>.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableDashboard {
		return nil
	}
	wanted := map[string]bool{}
	for _, id := range a.cfg.Sections {
		wanted[strings.ToLower(strings.TrimSpace(id))] = true
	}
	unread := 0
	if fixtures := a.cfg.Service.Fixtures(); fixtures != nil {
		unread = core.UnreadCount(fixtures.Alerts())
	}
	var items []MenuItem
	for _, nav := range core.NavItems() {
		if len(wanted) > 0 && !wanted[nav.ID] {
			continue
		}
		item := MenuItem{
			ID:       nav.ID,
			Label:    nav.Label,
			Route:    a.cfg.Route + "?" + url.Values{"tab": {nav.ID}}.Encode(),
			Icon:     nav.Icon,
			Position: len(items),
		}
		if nav.ID == alertBadgeItemID {
			item.Badge = unread
		}
		items = append(items, item)
	}
	return items
}

// Bootstrap ensures every mirrored section exists in the host menu.
// All builder failures are returned together.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	items := a.MenuItems()
	var errs []error
	for _, item := range items {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			errs = append(errs, fmt.Errorf("goadmin: menu item %s: %w", item.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if len(a.cfg.ActivityHooks) == 0 {
		return nil
	}
	badge := 0
	for _, item := range items {
		badge += item.Badge
	}
	return activitypkg.NewEmitter(a.cfg.ActivityHooks, a.cfg.ActivityConfig).Emit(ctx, activitypkg.Event{
		Verb:       "dashboard.menu.ensured",
		ObjectType: "menu",
		ObjectID:   a.cfg.MenuCode,
		Metadata:   map[string]any{"items": len(items), "unread_alerts": badge},
	})
}

// LogMenuBuilder logs menu entries for hosts without a navigation store.
type LogMenuBuilder struct {
	Logger log.Interface
}

func (b LogMenuBuilder) EnsureMenuItem(_ context.Context, menuCode string, item MenuItem) error {
	logger := b.Logger
	if logger == nil {
		logger = log.Log
	}
	logger.WithFields(log.Fields{
		"menu":     menuCode,
		"id":       item.ID,
		"route":    item.Route,
		"position": item.Position,
		"badge":    item.Badge,
	}).Debug("goadmin.menu")
	return nil
}
