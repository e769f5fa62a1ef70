package entity

import (
	"net/url"
	"strings"
	"time"
)

// TabID uniquely identifies a host page context.
type TabID string

// Tab is a host page known to the background coordinator.
type Tab struct {
	ID        TabID
	URL       string
	Ready     bool // an engine announced itself in this tab
	Position  int
	CreatedAt time.Time
	LoadedAt  time.Time
}

// NewTab creates a tab for url.
func NewTab(id TabID, rawURL string) *Tab {
	return &Tab{
		ID:        id,
		URL:       rawURL,
		CreatedAt: time.Now(),
	}
}

// Host returns the lower-cased host name of the tab URL, empty if unparsable.
func (t *Tab) Host() string {
	u, err := url.Parse(t.URL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// HostAllowed reports whether host equals an allow-list entry or is a
// subdomain of one.
func HostAllowed(host string, allow []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, a := range allow {
		a = strings.ToLower(a)
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}

// TabList manages an ordered collection of tabs.
type TabList struct {
	Tabs        []*Tab
	ActiveTabID TabID
}

// NewTabList creates an empty tab list.
func NewTabList() *TabList {
	return &TabList{
		Tabs: make([]*Tab, 0),
	}
}

// Add appends a tab to the list. The first tab becomes active.
func (tl *TabList) Add(tab *Tab) {
	tab.Position = len(tl.Tabs)
	tl.Tabs = append(tl.Tabs, tab)
	if tl.ActiveTabID == "" {
		tl.ActiveTabID = tab.ID
	}
}

// Remove removes a tab by ID and reindexes positions.
func (tl *TabList) Remove(id TabID) bool {
	for i, tab := range tl.Tabs {
		if tab.ID != id {
			continue
		}
		tl.Tabs = append(tl.Tabs[:i], tl.Tabs[i+1:]...)
		for j := i; j < len(tl.Tabs); j++ {
			tl.Tabs[j].Position = j
		}
		if tl.ActiveTabID == id {
			switch {
			case len(tl.Tabs) == 0:
				tl.ActiveTabID = ""
			case i < len(tl.Tabs):
				tl.ActiveTabID = tl.Tabs[i].ID
			default:
				tl.ActiveTabID = tl.Tabs[len(tl.Tabs)-1].ID
			}
		}
		return true
	}
	return false
}

// Find returns a tab by ID.
func (tl *TabList) Find(id TabID) *Tab {
	for _, tab := range tl.Tabs {
		if tab.ID == id {
			return tab
		}
	}
	return nil
}

// Activate makes id the active tab.
func (tl *TabList) Activate(id TabID) bool {
	if tl.Find(id) == nil {
		return false
	}
	tl.ActiveTabID = id
	return true
}

// ActiveTab returns the currently active tab.
func (tl *TabList) ActiveTab() *Tab {
	return tl.Find(tl.ActiveTabID)
}

// Count returns the number of tabs.
func (tl *TabList) Count() int {
	return len(tl.Tabs)
}
