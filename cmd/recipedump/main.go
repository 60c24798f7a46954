// Recipe catalog inspection tool.
//
// Usage: go run ./cmd/recipedump [-config path] [-recipe name] [-opcodes]
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/pthm-cable/tribes/config"
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
	"github.com/pthm-cable/tribes/tribe"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	name := flag.String("recipe", "", "Dump only this recipe")
	opcodes := flag.Bool("opcodes", false, "List interpreter opcodes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	data, err := cfg.Recipes()
	if err != nil {
		log.Fatalf("failed to read recipes: %v", err)
	}
	catalog, err := recipe.LoadCSV(bytes.NewReader(data))
	if err != nil {
		log.Fatalf("failed to load recipes: %v", err)
	}

	if *opcodes {
		dumpOpcodes(engine.NewOpcodeRegistry())
		return
	}

	if *name != "" {
		r, ok := catalog.FindByName(*name)
		if !ok {
			if s := catalog.Suggest(*name); s != "" {
				log.Fatalf("recipe %q not found, did you mean %q?", *name, s)
			}
			log.Fatalf("recipe %q not found", *name)
		}
		r.Dump(os.Stdout)
		return
	}

	for _, r := range catalog.All() {
		r.Dump(os.Stdout)
		fmt.Println()
	}

	for _, tc := range cfg.Tribes {
		dumpTribe(catalog, tc)
	}
}

// dumpTribe prints the policy and NPC type a tribe derives from its tribal recipe.
func dumpTribe(catalog *recipe.Catalog, tc config.TribeConfig) {
	fmt.Printf("Tribe %d: %s\n", tc.ID, tc.Name)
	tribal, ok := catalog.FindByName(tc.TribalRecipe)
	if !ok {
		fmt.Printf("  tribal recipe %q not found\n\n", tc.TribalRecipe)
		return
	}
	c, err := tribe.ParseConfiguration(tc.ID, tribal)
	if err != nil {
		fmt.Printf("  %v\n\n", err)
		return
	}
	fmt.Printf("  aggressivity=%s brain=%s growth=%s unity=%s sleep=%s\n",
		c.Aggressivity, c.Brain, c.Growth, c.Unity, c.SleepPeriod)
	for i, l := range c.Recipes {
		fmt.Printf("  %d) %s (%s)\n", i+1, l.Name, l.Mode)
	}
	d, err := c.Descriptor()
	if err != nil {
		fmt.Printf("  %v\n\n", err)
		return
	}
	fmt.Printf("  %s\n\n", d)
}

func dumpOpcodes(reg *engine.OpcodeRegistry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	for _, cat := range reg.Categories() {
		fmt.Fprintf(w, "[%s]\n", cat)
		for _, info := range reg.ByCategory(cat) {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", info.Name(), info.Arity(), info.Description)
		}
	}
}
