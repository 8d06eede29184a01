package models

// Document keys used by both the local store and the cloud KV backends.
// These strings are shared with existing deployments and must not change.
const (
	KeyCategories = "aurora_data_v1"
	KeySettings   = "aurora_settings_v1"
	KeyEngines    = "aurora_engines_v1"
)

// RecommendationsID is the id of the derived "常用推荐" category. It is
// recomputed from click counts on every save and is never edited directly.
const RecommendationsID = "rec-1"

// LinkItem represents a single bookmark on the dashboard.
type LinkItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Color       string `json:"color,omitempty"`
	ClickCount  int    `json:"clickCount,omitempty"`
	Size        string `json:"size,omitempty"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
	Pros        string `json:"pros,omitempty"`
	Cons        string `json:"cons,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Category groups links on the dashboard. Array order is display order.
type Category struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Icon      string     `json:"icon"`
	Links     []LinkItem `json:"links"`
	IsPrivate bool       `json:"isPrivate,omitempty"`
}

// IsSynthetic reports whether the category is the derived recommendations
// category, which is excluded from manual CRUD and reorder operations.
func (c Category) IsSynthetic() bool {
	return c.ID == RecommendationsID
}

// SearchEngine describes one entry in the search-engine switcher. The sync
// core passes these through without interpreting them.
type SearchEngine struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	BaseURL          string `json:"baseUrl"`
	SearchURLPattern string `json:"searchUrlPattern"`
}

// AppSettings is the default shape of the settings document. The sync
// core never decodes the document into this struct: it carries settings
// as raw JSON end to end so fields it does not know about survive every
// load/save round-trip. This struct exists for first-run seeding and for
// the partial reads the HTTP layer needs.
type AppSettings struct {
	Theme        string           `json:"theme"`
	Language     string           `json:"language"`
	EngineID     string           `json:"engineId"`
	SiteTitle    string           `json:"siteTitle,omitempty"`
	AIProviders  []map[string]any `json:"aiProviders,omitempty"`
	Widgets      []map[string]any `json:"widgets,omitempty"`
	Workflows    []map[string]any `json:"workflows,omitempty"`
	ShowPrivate  bool             `json:"showPrivate,omitempty"`
	CommandHints bool             `json:"commandHints,omitempty"`
}
