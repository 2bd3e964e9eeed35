// Command coursectl fetches the course catalog and filters and sorts it locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"coursecatalog/internal/catalog"
	"coursecatalog/internal/config"
	"coursecatalog/internal/logger"
	"coursecatalog/internal/model"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type options struct {
	id       string
	search   string
	paid     string
	minPrice string
	maxPrice string
	topics   string
	sort     string
}

func main() {
	_ = godotenv.Load()
	log := logger.New(os.Getenv("ENV"))

	var opts options
	flag.StringVar(&opts.id, "id", "", "show a single course by id")
	flag.StringVar(&opts.search, "search", "", "case-insensitive match on title or description")
	flag.StringVar(&opts.paid, "paid", "", "true for paid courses only, false for free only")
	flag.StringVar(&opts.minPrice, "min-price", "", "inclusive lower price bound")
	flag.StringVar(&opts.maxPrice, "max-price", "", "inclusive upper price bound")
	flag.StringVar(&opts.topics, "topic", "", "comma-separated topics that must all be present")
	flag.StringVar(&opts.sort, "sort", "newest", "newest|oldest|price_asc|price_desc|title_asc|title_desc")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Msgf("Error loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := run(ctx, catalog.NewClient(cfg.ClientURL, nil), opts, os.Stdout); err != nil {
		log.Error().Err(err).Msg("coursectl failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, client *catalog.Client, opts options, out io.Writer) error {
	if opts.id != "" {
		c, err := client.GetCourse(ctx, opts.id)
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("course %s not found", opts.id)
		}
		if err != nil {
			return err
		}
		return printCourses(out, []model.Course{*c})
	}

	filter, sortBy, err := parseOptions(opts)
	if err != nil {
		return err
	}
	courses, err := client.ListCourses(ctx)
	if err != nil {
		return err
	}
	return printCourses(out, catalog.Apply(courses, filter, sortBy))
}

func parseOptions(opts options) (catalog.Filter, catalog.Sort, error) {
	f := catalog.Filter{Search: opts.search}
	switch strings.ToLower(opts.paid) {
	case "":
	case "true", "paid":
		v := true
		f.Paid = &v
	case "false", "free":
		v := false
		f.Paid = &v
	default:
		return f, "", fmt.Errorf("invalid -paid value %q", opts.paid)
	}
	if opts.minPrice != "" {
		d, err := decimal.NewFromString(opts.minPrice)
		if err != nil {
			return f, "", fmt.Errorf("invalid -min-price: %w", err)
		}
		f.MinPrice = &d
	}
	if opts.maxPrice != "" {
		d, err := decimal.NewFromString(opts.maxPrice)
		if err != nil {
			return f, "", fmt.Errorf("invalid -max-price: %w", err)
		}
		f.MaxPrice = &d
	}
	if opts.topics != "" {
		f.Topics = strings.Split(opts.topics, ",")
	}
	s, err := catalog.ParseSort(opts.sort)
	if err != nil {
		return f, "", err
	}
	return f, s, nil
}

func printCourses(out io.Writer, courses []model.Course) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tPAID\tTOPICS\tCREATED")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			c.CourseID, c.Title, c.Price.StringFixed(2), c.IsPaid,
			strings.Join(c.Topics, ","), c.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
