package render

import (
	"sync"

	"fair-mapper/internal/common/logger"
)

var log = logger.Get("render")

// сторона viewBox иконок
const iconViewBox = 24

// Контурные иконки категорий магазинов (24x24).
var categoryIcons = map[string]string{
	"food":        "M3 2l2.01 18.23L12 17l6.99 3.23L21 2H3zm7 12V7h4v7l-2-1-2 1z",
	"clothing":    "M6 2L3 6v14a2 2 0 0 0 2 2h14a2 2 0 0 0 2-2V6l-3-4H6zm0 0h12m-9 5h6",
	"electronics": "M20 16V7a2 2 0 0 0-2-2H6a2 2 0 0 0-2 2v9m16 0H4m16 0 1.28 2.55a1 1 0 0 1-.9 1.45H3.62a1 1 0 0 1-.9-1.45L4 16",
	"jewelry":     "M2.7 10.3a2.41 2.41 0 0 0 0 3.41l7.59 7.59a2.41 2.41 0 0 0 3.41 0l7.59-7.59a2.41 2.41 0 0 0 0-3.41l-7.59-7.59a2.41 2.41 0 0 0-3.41 0Z",
	"books":       "M4 19.5v-15A2.5 2.5 0 0 1 6.5 2H20v20H6.5a2.5 2.5 0 0 1 0-5H20",
	"sports":      "M6 9H4.5a2.5 2.5 0 0 1 0-5H6m0 5V4m0 5h12m0 0V4m0 5h1.5a2.5 2.5 0 0 0 0-5H18m0 5v10m0-10L6 19m12 0h1.5a2.5 2.5 0 0 1 0 5H18m-12 0H4.5a2.5 2.5 0 0 0 0 5H6m0-5v-5",
	"home":        "m3 9 9-7 9 7v11a2 2 0 0 1-2 2H5a2 2 0 0 1-2-2z M9 22V12h6v10",
	"beauty":      "m12 3-1.912 5.813a2 2 0 0 1-1.275 1.275L3 12l5.813 1.912a2 2 0 0 1 1.275 1.275L12 21l1.912-5.813a2 2 0 0 1 1.275-1.275L21 12l-5.813-1.912a2 2 0 0 1-1.275-1.275L12 3Z",
	"toys":        "M9 12h.01M15 12h.01M10 16c.5.3 1.2.5 2 .5s1.5-.2 2-.5m-7 6 1-9m6 9-1-9M6 19c.7-1.2 1.8-2 3-2m9 2c-.7-1.2-1.8-2-3-2m3-5a3 3 0 1 0 0-6 3 3 0 0 0 0 6ZM9 9a3 3 0 1 0 0-6 3 3 0 0 0 0 6Z",
	"services":    "M8 2v4m8-4v4M3 10h18m-9 4h.01M8 14h.01m7.99 0h.01M8 18h.01m3.99 0h.01m3.99 0h.01M5 22h14a2 2 0 0 0 2-2V8a2 2 0 0 0-2-2H5a2 2 0 0 0-2 2v12a2 2 0 0 0 2 2Z",
	"other":       "M16 16h2a2 2 0 0 0 2-2V8a2 2 0 0 0-2-2h-6m-2 10H6a2 2 0 0 1-2-2V6a2 2 0 0 1 2-2h6m-2 10V6m10 4L3 3",
}

var (
	iconsOnce sync.Once
	icons     map[string]Path
)

// iconFor возвращает разобранную иконку категории; неизвестная категория даёт "other".
func iconFor(category string) Path {
	iconsOnce.Do(func() {
		icons = make(map[string]Path, len(categoryIcons))
		for name, d := range categoryIcons {
			p, err := ParsePath(d)
			if err != nil {
				log.Errorf("icon %s: %v", name, err)
				continue
			}
			icons[name] = p
		}
	})
	if p, ok := icons[category]; ok {
		return p
	}
	return icons["other"]
}
