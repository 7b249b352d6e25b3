package entity

// HeroSection is the banner at the top of the storefront home page.
type HeroSection struct {
	Badge               string `json:"badge"`
	Title               string `json:"title"`
	Description         string `json:"description"`
	PrimaryButtonText   string `json:"primaryButtonText"`
	SecondaryButtonText string `json:"secondaryButtonText"`
	BackgroundImage     string `json:"backgroundImage"`
}

func DefaultHeroSection() *HeroSection {
	return &HeroSection{
		Badge:               "Special Offers This Season",
		Title:               "Shop the Best Products Online",
		Description:         "Discover thousands of quality products at unbeatable prices.",
		PrimaryButtonText:   "Shop Now",
		SecondaryButtonText: "Learn More",
		BackgroundImage:     "https://images.unsplash.com/photo-1607082348824-0a96f2a4b9da?w=1920",
	}
}

// Merge returns h with every blank field taken from base.
func (h HeroSection) Merge(base *HeroSection) *HeroSection {
	pick := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}
	return &HeroSection{
		Badge:               pick(h.Badge, base.Badge),
		Title:               pick(h.Title, base.Title),
		Description:         pick(h.Description, base.Description),
		PrimaryButtonText:   pick(h.PrimaryButtonText, base.PrimaryButtonText),
		SecondaryButtonText: pick(h.SecondaryButtonText, base.SecondaryButtonText),
		BackgroundImage:     pick(h.BackgroundImage, base.BackgroundImage),
	}
}
