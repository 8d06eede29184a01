package models

// DefaultCategories seeds a first run before any admin edits exist.
func DefaultCategories() []Category {
	return []Category{
		{
			ID:    "cat-dev",
			Title: "开发工具",
			Icon:  "Code",
			Links: []LinkItem{
				{
					ID:          "link-github",
					Title:       "GitHub",
					URL:         "https://github.com",
					Description: "代码托管平台",
				},
				{
					ID:          "link-mdn",
					Title:       "MDN Web Docs",
					URL:         "https://developer.mozilla.org",
					Description: "Web 开发文档",
				},
			},
		},
		{
			ID:    "cat-design",
			Title: "设计资源",
			Icon:  "Palette",
			Links: []LinkItem{
				{
					ID:          "link-figma",
					Title:       "Figma",
					URL:         "https://figma.com",
					Description: "协作设计工具",
				},
			},
		},
	}
}

// DefaultSettings returns the initial settings document.
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:    "aurora",
		Language: "zh-CN",
		EngineID: "google",
	}
}

// DefaultEngines returns the built-in search engine list.
func DefaultEngines() []SearchEngine {
	return []SearchEngine{
		{ID: "google", Name: "Google", BaseURL: "https://www.google.com", SearchURLPattern: "https://www.google.com/search?q=%s"},
		{ID: "bing", Name: "Bing", BaseURL: "https://www.bing.com", SearchURLPattern: "https://www.bing.com/search?q=%s"},
		{ID: "duckduckgo", Name: "DuckDuckGo", BaseURL: "https://duckduckgo.com", SearchURLPattern: "https://duckduckgo.com/?q=%s"},
	}
}
