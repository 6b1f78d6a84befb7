package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// AlertType categorizes an alert.
type AlertType string

const (
	AlertWeather AlertType = "weather"
	AlertPest    AlertType = "pest"
	AlertMarket  AlertType = "market"
)

// AlertSeverity ranks an alert.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// AlertRecord is a single notification shown in the alerts panel.
// Timestamp is a display string and is never parsed.
type AlertRecord struct {
	ID          string        `json:"id" yaml:"id"`
	Type        AlertType     `json:"type" yaml:"type"`
	Severity    AlertSeverity `json:"severity" yaml:"severity"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Timestamp   string        `json:"timestamp" yaml:"timestamp"`
	Read        bool          `json:"read" yaml:"read"`
	Region      string        `json:"region" yaml:"region"`
}

// AlertTab selects which alerts the panel lists.
type AlertTab string

// AlertTabAll shows every alert.
const AlertTabAll AlertTab = "all"

var (
	errInvalidAlertTab = errors.New("dashboard: unknown alert tab")
	errAlertNotFound   = errors.New("dashboard: alert not found")
	errMissingAlertID  = errors.New("dashboard: alert id is required")
)

var alertTabLabels = map[AlertTab]string{
	AlertTabAll:            "All",
	AlertTab(AlertWeather): "Weather",
	AlertTab(AlertPest):    "Pests",
	AlertTab(AlertMarket):  "Market",
}

// AlertTabs lists panel tabs in display order.
func AlertTabs() []AlertTab {
	return []AlertTab{AlertTabAll, AlertTab(AlertWeather), AlertTab(AlertPest), AlertTab(AlertMarket)}
}

// ParseAlertTab validates a tab name. Empty input selects "all".
func ParseAlertTab(value string) (AlertTab, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return AlertTabAll, nil
	}
	for _, tab := range AlertTabs() {
		if string(tab) == value {
			return tab, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errInvalidAlertTab, value)
}

// FilterAlerts keeps the alerts whose type equals the tab, in input order.
// The "all" tab returns the input unchanged.
func FilterAlerts(alerts []AlertRecord, tab AlertTab) []AlertRecord {
	if tab == AlertTabAll {
		return alerts
	}
	out := make([]AlertRecord, 0, len(alerts))
	for _, alert := range alerts {
		if AlertTab(alert.Type) == tab {
			out = append(out, alert)
		}
	}
	return out
}

// UnreadCount returns how many alerts are still unread.
func UnreadCount(alerts []AlertRecord) int {
	n := 0
	for _, alert := range alerts {
		if !alert.Read {
			n++
		}
	}
	return n
}

// SeverityClass maps a severity to its badge style.
func SeverityClass(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "bg-destructive text-destructive-foreground"
	case SeverityMedium:
		return "bg-warning text-warning-foreground"
	case SeverityLow:
		return "bg-info text-info-foreground"
	default:
		return "bg-muted text-muted-foreground"
	}
}

// AlertIcon maps an alert type to its icon handle.
func AlertIcon(t AlertType) string {
	switch t {
	case AlertWeather:
		return "cloud-rain"
	case AlertPest:
		return "bug"
	case AlertMarket:
		return "trending-down"
	default:
		return "alert-triangle"
	}
}

// TabView is a selectable tab as rendered by templates.
type TabView struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// AlertItemView is a display-ready alert row.
type AlertItemView struct {
	AlertRecord
	SeverityClass string `json:"severity_class"`
	Icon          string `json:"icon"`
	Highlighted   bool   `json:"highlighted"`
	CanMarkRead   bool   `json:"can_mark_read"`
}

// AlertsView is the alerts panel for one tab.
type AlertsView struct {
	Title        string          `json:"title"`
	Tab          AlertTab        `json:"tab"`
	Tabs         []TabView       `json:"tabs"`
	Items        []AlertItemView `json:"items"`
	Empty        bool            `json:"empty"`
	EmptyMessage string          `json:"empty_message,omitempty"`
	Unread       int             `json:"unread"`
}

// BuildAlertsView filters alerts for the tab and decorates each row.
func BuildAlertsView(alerts []AlertRecord, tab AlertTab) AlertsView {
	filtered := FilterAlerts(alerts, tab)
	view := AlertsView{
		Title:  "Alert Notifications",
		Tab:    tab,
		Items:  make([]AlertItemView, 0, len(filtered)),
		Unread: UnreadCount(alerts),
	}
	for _, t := range AlertTabs() {
		view.Tabs = append(view.Tabs, TabView{Value: string(t), Label: alertTabLabels[t], Active: t == tab})
	}
	for _, alert := range filtered {
		view.Items = append(view.Items, AlertItemView{
			AlertRecord:   alert,
			SeverityClass: SeverityClass(alert.Severity),
			Icon:          AlertIcon(alert.Type),
			Highlighted:   !alert.Read,
			CanMarkRead:   !alert.Read,
		})
	}
	if len(view.Items) == 0 {
		view.Empty = true
		view.EmptyMessage = "No alerts in this category"
	}
	return view
}

func findAlert(alerts []AlertRecord, id string) (AlertRecord, bool) {
	for _, alert := range alerts {
		if alert.ID == id {
			return alert, true
		}
	}
	return AlertRecord{}, false
}
