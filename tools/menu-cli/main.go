package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yashrajoria/menu-backend/pkg/cart"
	"github.com/yashrajoria/menu-backend/pkg/menu"
	"github.com/yashrajoria/menu-backend/pkg/menuclient"
)

const usage = `usage: menu-cli [flags] <command> [args]

commands:
  show              print the menu, from cache when fresh
  refresh           refetch the menu and overwrite the cache
  order IDX[:QTY]…  build a cart from flat item indexes and print the checkout link
  link              print the checkout link
`

func main() {
	var baseURL, cachePath, phone string
	var freshness time.Duration
	flag.StringVar(&baseURL, "api", envOr("MENU_API_URL", "http://localhost:8085"), "menu API base URL")
	flag.StringVar(&cachePath, "cache", defaultCachePath(), "local menu cache file")
	flag.StringVar(&phone, "phone", os.Getenv("CHECKOUT_PHONE"), "checkout phone number")
	flag.DurationVar(&freshness, "freshness", menuclient.DefaultFreshness, "how long the cached menu is served")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage); flag.PrintDefaults() }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if flag.Arg(0) == "link" {
		fmt.Println(menuclient.CheckoutLink(phone))
		return
	}

	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		log.Fatalf("cache dir: %v", err)
	}
	cache, err := menuclient.OpenBoltCache(cachePath)
	if err != nil {
		log.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	loader := menuclient.NewLoader(menuclient.NewClient(baseURL), cache,
		menuclient.WithFreshness(freshness),
		menuclient.OnRefreshed(func(e menuclient.Entry) {
			fmt.Fprintf(os.Stderr, "menu refreshed: %d categories\n", len(e.Categories))
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch flag.Arg(0) {
	case "show":
		m, source, err := loader.Load(ctx)
		if err != nil {
			log.Fatalf("load menu: %v", err)
		}
		fmt.Fprintf(os.Stderr, "source: %s\n", source)
		printMenu(os.Stdout, m)
	case "refresh":
		m, err := loader.Refresh(ctx)
		if err != nil {
			log.Fatalf("refresh menu: %v", err)
		}
		printMenu(os.Stdout, m)
	case "order":
		m, _, err := loader.Load(ctx)
		if err != nil {
			log.Fatalf("load menu: %v", err)
		}
		c := cart.New(m.Items)
		if err := fillCart(c, flag.Args()[1:]); err != nil {
			log.Fatal(err)
		}
		printCart(os.Stdout, c)
		fmt.Println(menuclient.CheckoutLink(phone))
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printMenu(w io.Writer, m menu.Menu) {
	for _, section := range m.Sections {
		fmt.Fprintf(w, "%s\n", section.Name)
		for _, item := range section.Items {
			fmt.Fprintf(w, "  [%d] %-30s %10.2f\n", item.Index, item.Name, item.Price)
		}
	}
}

func printCart(w io.Writer, c *cart.Cart) {
	for _, line := range c.Lines() {
		fmt.Fprintf(w, "%3d x %-30s %10.2f\n", line.Quantity, line.Item.Name, line.Total)
	}
	fmt.Fprintf(w, "total: %.2f\n", c.Total())
}

// fillCart applies "IDX" or "IDX:QTY" arguments. The first unit of an item is
// an Add, the rest are Increments.
func fillCart(c *cart.Cart, args []string) error {
	for _, arg := range args {
		idxRaw, qtyRaw, hasQty := strings.Cut(arg, ":")
		index, err := strconv.Atoi(idxRaw)
		if err != nil {
			return fmt.Errorf("invalid item %q", arg)
		}
		qty := 1
		if hasQty {
			if qty, err = strconv.Atoi(qtyRaw); err != nil || qty < 1 {
				return fmt.Errorf("invalid quantity %q", arg)
			}
		}
		for i := 0; i < qty; i++ {
			state, err := c.State(index)
			if err != nil {
				return fmt.Errorf("item %d: %w", index, err)
			}
			if state == cart.Absent {
				_, err = c.Add(index)
			} else {
				_, err = c.Increment(index)
			}
			if err != nil {
				return fmt.Errorf("item %d: %w", index, err)
			}
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "menu-cli", "menu.db")
}
