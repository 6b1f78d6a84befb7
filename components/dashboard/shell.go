package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ettle/strcase"
)

const (
	shellBrand          = "IAIS Dashboard"
	shellBrandCollapsed = "IAIS"
	defaultShellTab     = "overview"
	defaultLanguage     = "en"
	altLanguage         = "ar"
)

var errInvalidShellTab = errors.New("dashboard: unknown dashboard section")

// NavItem is a sidebar entry.
type NavItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

var sidebarItems = []NavItem{
	{ID: "home", Label: "Home", Icon: "home"},
	{ID: "overview", Label: "Dashboard", Icon: "layout-dashboard"},
	{ID: "crops", Label: "Crops", Icon: "pie-chart"},
	{ID: "livestock", Label: "Livestock", Icon: "bar-chart-3"},
	{ID: "market", Label: "Market Prices", Icon: "shopping-cart"},
	{ID: "maps", Label: "GIS Maps", Icon: "globe"},
	{ID: "weather", Label: "Weather", Icon: "calendar"},
	{ID: "reports", Label: "Reports", Icon: "file-text"},
	{ID: "partners", Label: "Partners", Icon: "users"},
	{ID: "messages", Label: "Messages", Icon: "message-square"},
	{ID: "resources", Label: "Resources", Icon: "compass"},
	{ID: "settings", Label: "Settings", Icon: "settings"},
}

var bodyTabs = []Option{
	{Value: "overview", Label: "Overview"},
	{Value: "crops", Label: "Crops"},
	{Value: "livestock", Label: "Livestock"},
	{Value: "market", Label: "Market"},
	{Value: "maps", Label: "Maps"},
}

// Section is the body content for a non-overview tab.
type Section struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Placeholder string   `json:"placeholder"`
	DataType    DataType `json:"data_type,omitempty"`
	ViewMode    ViewMode `json:"view_mode,omitempty"`
}

// HasVisualization reports whether the section embeds a dataset view.
func (s Section) HasVisualization() bool { return s.DataType != "" }

var dataSections = map[string]Section{
	"crops": {
		Title:       "Crops Management",
		Description: "Detailed information about crops, planting seasons, and yields.",
		Placeholder: "Crops data visualization will appear here",
		DataType:    DataTypeCrops,
		ViewMode:    ViewChart,
	},
	"livestock": {
		Title:       "Livestock Management",
		Description: "Detailed information about livestock, health records, and veterinary programs.",
		Placeholder: "Livestock data visualization will appear here",
		DataType:    DataTypeLivestock,
		ViewMode:    ViewChart,
	},
	"market": {
		Title:       "Market Prices",
		Description: "Real-time market prices for agricultural products.",
		Placeholder: "Market price data visualization will appear here",
		DataType:    DataTypeMarket,
		ViewMode:    ViewTable,
	},
	"maps": {
		Title:       "GIS Maps",
		Description: "Interactive maps showing agricultural data, land use, and resources.",
		Placeholder: "GIS map visualization will appear here",
		DataType:    DataTypeWeather,
		ViewMode:    ViewMap,
	},
}

// NavItems returns a copy of the sidebar entries in display order.
func NavItems() []NavItem {
	return append([]NavItem(nil), sidebarItems...)
}

// ShellState is the per-viewer navigation state.
type ShellState struct {
	Tab         string `json:"tab"`
	SidebarOpen bool   `json:"sidebar_open"`
	Language    string `json:"language"`
}

// DefaultShellState opens the overview with an expanded sidebar in English.
func DefaultShellState() ShellState {
	return ShellState{Tab: defaultShellTab, SidebarOpen: true, Language: defaultLanguage}
}

// ToggleSidebar flips the sidebar between expanded and collapsed.
func (s ShellState) ToggleSidebar() ShellState {
	s.SidebarOpen = !s.SidebarOpen
	return s
}

// ToggleLanguage switches between English and Arabic.
func (s ShellState) ToggleLanguage() ShellState {
	if s.Language == altLanguage {
		s.Language = defaultLanguage
	} else {
		s.Language = altLanguage
	}
	return s
}

// ParseShellTab validates a section id against the sidebar. Empty input selects overview.
func ParseShellTab(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return defaultShellTab, nil
	}
	for _, item := range sidebarItems {
		if item.ID == value {
			return value, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errInvalidShellTab, value)
}

// ShellUser is the signed-in user shown in the header.
type ShellUser struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// DefaultShellUser is the demo administrator.
func DefaultShellUser() ShellUser {
	return ShellUser{
		Name:   "Admin User",
		Email:  "admin@agriculture.gov",
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=admin",
	}
}

// ShellView is the rendered page chrome.
type ShellView struct {
	Brand               string        `json:"brand"`
	SidebarOpen         bool          `json:"sidebar_open"`
	Language            string        `json:"language"`
	Direction           string        `json:"direction"`
	LanguageToggleLabel string        `json:"language_toggle_label"`
	Nav                 []NavItem     `json:"nav"`
	Tabs                []TabView     `json:"tabs"`
	ActiveTab           string        `json:"active_tab"`
	Section             *Section      `json:"section,omitempty"`
	User                ShellUser     `json:"user"`
	Notifications       []AlertRecord `json:"notifications"`
	NotificationCount   int           `json:"notification_count"`
}

// BuildShell renders navigation chrome for the state. Unread alerts feed the notification menu.
func BuildShell(ctx context.Context, state ShellState, user ShellUser, alerts []AlertRecord, tr TranslationService) ShellView {
	if state.Tab == "" {
		state.Tab = defaultShellTab
	}
	if state.Language == "" {
		state.Language = defaultLanguage
	}
	lang := state.Language
	view := ShellView{
		Brand:       translateOrFallback(ctx, tr, "dashboard.brand", lang, shellBrand, nil),
		SidebarOpen: state.SidebarOpen,
		Language:    lang,
		Direction:   "ltr",
		ActiveTab:   state.Tab,
		User:        user,
	}
	if !state.SidebarOpen {
		view.Brand = shellBrandCollapsed
	}
	if lang == altLanguage {
		view.Direction = "rtl"
		view.LanguageToggleLabel = "English"
	} else {
		view.LanguageToggleLabel = "العربية"
	}
	for _, item := range sidebarItems {
		item.Label = translateOrFallback(ctx, tr, "dashboard.nav."+item.ID, lang, item.Label, nil)
		item.Active = item.ID == state.Tab
		view.Nav = append(view.Nav, item)
	}
	for _, tab := range bodyTabs {
		label := translateOrFallback(ctx, tr, "dashboard.tab."+tab.Value, lang, tab.Label, nil)
		view.Tabs = append(view.Tabs, TabView{Value: tab.Value, Label: label, Active: tab.Value == state.Tab})
	}
	if state.Tab != defaultShellTab {
		section := sectionFor(state.Tab)
		view.Section = &section
	}
	for _, alert := range alerts {
		if !alert.Read {
			view.Notifications = append(view.Notifications, alert)
		}
	}
	view.NotificationCount = len(view.Notifications)
	return view
}

// sectionFor returns the data section for a tab, or a generic placeholder section.
func sectionFor(tab string) Section {
	if section, ok := dataSections[tab]; ok {
		section.ID = tab
		return section
	}
	title := strcase.ToPascal(tab)
	return Section{
		ID:          tab,
		Title:       title,
		Description: fmt.Sprintf("This is the %s section of the dashboard.", tab),
		Placeholder: title + " content will appear here",
	}
}
