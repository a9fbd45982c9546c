package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog maps category names to their candidate secret words. Clients only
// ever see the category names; words stay server-side until a game ends.
type Catalog struct {
	names []string
	words map[string][]string
}

func defaultCatalog() *Catalog {
	c := &Catalog{words: make(map[string][]string)}

	c.add("Pop Culture", []string{
		"Beyoncé", "Taylor Swift", "Marvel", "TikTok", "Netflix",
		"iPhone", "YouTube", "Kanye West", "Kim Kardashian", "Instagram",
		"Disney", "Harry Styles", "Rihanna", "Adele", "BTS",
		"Dua Lipa", "Elon Musk", "Billie Eilish", "Zendaya", "Bad Bunny",
	})
	c.add("TV Shows", []string{
		"Stranger Things", "Breaking Bad", "Friends", "Game of Thrones",
		"The Office", "Grey's Anatomy", "Squid Game", "Wednesday",
		"Euphoria", "The Crown", "Succession", "Ozark",
		"The Mandalorian", "Black Mirror", "Ted Lasso",
		"Yellowstone", "The Bear", "White Lotus", "House of Dragon", "Severance",
	})
	c.add("Movies", []string{
		"Titanic", "Avatar", "The Dark Knight", "Inception",
		"Avengers", "Jurassic Park", "Star Wars", "The Lion King",
		"Frozen", "Harry Potter", "Top Gun", "Interstellar",
		"Gladiator", "The Matrix", "Barbie",
		"Oppenheimer", "Dune", "Everything Everywhere", "Parasite", "Get Out",
	})
	c.add("Sports", []string{
		"Soccer", "Basketball", "Tennis", "Swimming",
		"Baseball", "Golf", "Boxing", "Olympics",
		"Super Bowl", "World Cup", "NFL", "NBA",
		"Formula 1", "Gymnastics", "Volleyball",
		"Hockey", "Wrestling", "MMA", "Marathon", "Skateboarding",
	})

	return c
}

func (c *Catalog) add(name string, words []string) {
	if _, exists := c.words[name]; !exists {
		c.names = append(c.names, name)
	}
	c.words[name] = words
}

// Names returns the category names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.words[name]
	return ok
}

func (c *Catalog) Words(name string) []string {
	return c.words[name]
}

// loadCatalog returns the built-in catalog, or one read from path if set.
// The file maps category names to word lists, in yaml (or json, which yaml
// subsumes). Category names keep the casing and order of the file.
func loadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return defaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category catalog: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing category catalog: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("category catalog %q contains no categories", path)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("category catalog %q must map category names to word lists", path)
	}

	c := &Catalog{words: make(map[string][]string, len(root.Content)/2)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value

		var words []string
		if err := root.Content[i+1].Decode(&words); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("category %q contains no words", name)
		}

		c.add(name, words)
	}

	if len(c.names) == 0 {
		return nil, fmt.Errorf("category catalog %q contains no categories", path)
	}

	return c, nil
}
