package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/japaniel/vocabreader/pkg/db"
	"github.com/japaniel/vocabreader/pkg/dictionary"
	"github.com/japaniel/vocabreader/pkg/ingest"
	"github.com/japaniel/vocabreader/pkg/lang"
	"github.com/japaniel/vocabreader/pkg/vocab"
)

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// userID resolves a username, creating the user on first use.
func (a *app) userID(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("-user is required")
	}
	u, err := db.GetUser(ctx, a.conn, name)
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return 0, err
	}
	id, err := db.CreateUser(ctx, a.conn, name, "en")
	if err != nil {
		return 0, err
	}
	a.log.WithField("user", name).Info("user created")
	return id, nil
}

func (a *app) vocab() *vocab.Service {
	return vocab.NewService(db.NewWordStore(a.conn, a.log), a.log)
}

func runImport(a *app, ctx context.Context, args []string) error {
	fs := a.flags("import")
	urlFlag := fs.String("url", "", "URL of a web article to import")
	langFlag := fs.String("lang", "en", "Language of the text")
	userFlag := fs.String("user", "system", "Uploading user")
	titleFlag := fs.String("title", "", "Title (defaults to the page title or file name)")
	authorFlag := fs.String("author", "", "Author")
	tagsFlag := fs.String("tags", "", "Comma separated tags")
	privateFlag := fs.Bool("private", false, "Mark the article private")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !lang.Supported(*langFlag) {
		return fmt.Errorf("language %q: %w", *langFlag, lang.ErrUnsupportedLanguage)
	}

	base := ingest.Source{
		Title:     *titleFlag,
		Author:    *authorFlag,
		Language:  *langFlag,
		Tags:      splitTags(*tagsFlag),
		IsPrivate: *privateFlag,
	}
	var sources []ingest.Source
	switch {
	case *urlFlag != "":
		f := ingest.NewFetcher(ingest.FetcherConfig{
			UserAgent:    a.cfg.Fetch.UserAgent,
			Timeout:      a.cfg.Fetch.Timeout,
			MaxBodyBytes: a.cfg.Fetch.MaxBodyBytes,
			CheckRobots:  a.cfg.Fetch.CheckRobots,
		}, a.log)
		page, err := f.Fetch(ctx, *urlFlag)
		if err != nil {
			return err
		}
		src := base
		src.Text, src.URL = page.Text, page.URL
		src.Title = cmp.Or(src.Title, page.Title, page.URL)
		src.Author = cmp.Or(src.Author, page.Author)
		sources = append(sources, src)
	case fs.NArg() > 0:
		for _, path := range fs.Args() {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			src := base
			src.Text = string(raw)
			src.Title = cmp.Or(src.Title, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			sources = append(sources, src)
		}
	default:
		return errors.New("import needs -url or at least one file")
	}

	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	ig := ingest.NewIngester(a.conn, lang.NewAnalyzer(a.cfg.Pages), a.log)
	ig.Workers = a.cfg.Ingest.Workers
	ig.BatchSize = a.cfg.Ingest.BatchSize
	ig.FlushInterval = a.cfg.Ingest.FlushInterval
	ids, err := ig.Ingest(ctx, uid, sources)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for i, id := range ids {
		fmt.Fprintf(a.out, "imported article %d: %s\n", id, sources[i].Title)
	}
	return nil
}

func runSearch(a *app, ctx context.Context, args []string) error {
	fs := a.flags("search")
	langFlag := fs.String("lang", "en", "Language of the query and the articles")
	offsetFlag := fs.Int("offset", 0, "Number of results to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q, err := lang.BuildQuery(strings.Join(fs.Args(), " "), *langFlag)
	if err != nil {
		return err
	}
	if q == "" {
		return errors.New("search needs a query")
	}
	found, err := db.SearchArticles(ctx, a.conn, q, *langFlag, *offsetFlag)
	if err != nil {
		return err
	}
	a.printSummaries(found)
	return nil
}

func (a *app) printSummaries(found []db.ArticleSummary) {
	if len(found) == 0 {
		fmt.Fprintln(a.out, "no articles found")
		return
	}
	for _, s := range found {
		fmt.Fprintf(a.out, "%d\t%s\t%s\t%d unique words\n", s.ID, s.Language, s.Title, s.UniqueCount)
	}
}

func runShow(a *app, ctx context.Context, args []string) error {
	fs := a.flags("show")
	idFlag := fs.Int64("id", 0, "Article id")
	sizeFlag := fs.String("size", "small", "Page size: small, medium or large")
	pageFlag := fs.Int("page", 1, "Page number, starting at 1")
	userFlag := fs.String("user", "", "Show word states of this user")
	if err := fs.Parse(args); err != nil {
		return err
	}
	art, err := db.GetArticle(ctx, a.conn, *idFlag)
	if err != nil {
		return err
	}

	var pages [][]string
	switch *sizeFlag {
	case "small":
		pages = art.PagesSmall
	case "medium":
		pages = art.PagesMedium
	case "large":
		pages = art.PagesLarge
	default:
		return fmt.Errorf("unknown page size %q", *sizeFlag)
	}
	// languages without a sentence model have no pages
	if len(pages) == 0 {
		pages = [][]string{art.Words}
	}
	if *pageFlag < 1 || *pageFlag > len(pages) {
		return fmt.Errorf("page %d out of range 1..%d", *pageFlag, len(pages))
	}
	page := pages[*pageFlag-1]

	fmt.Fprintf(a.out, "%s (%s) | page %d/%d | %d unique words\n\n", art.Title, art.Language, *pageFlag, len(pages), art.UniqueCount)
	fmt.Fprintln(a.out, strings.Join(page, ""))

	if *userFlag == "" {
		return nil
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	data, err := a.vocab().WordData(ctx, uid)
	if err != nil {
		return err
	}
	states := data.Language(art.Language)
	tokens := make([]lang.Token, len(page))
	for i, w := range page {
		tokens[i] = lang.Token{Text: w}
	}
	freq, _ := lang.Aggregate(tokens)
	byStatus := map[vocab.Status][]string{}
	for _, wc := range freq.Sorted() {
		st := states.StatusOf(wc.Word)
		byStatus[st] = append(byStatus[st], wc.Word)
	}
	fmt.Fprintln(a.out)
	for _, st := range []vocab.Status{vocab.StatusNew, vocab.StatusLearning, vocab.StatusKnown} {
		fmt.Fprintf(a.out, "%s (%d): %s\n", st, len(byStatus[st]), strings.Join(byStatus[st], " "))
	}
	return nil
}

func runStatus(a *app, ctx context.Context, args []string) error {
	fs := a.flags("status")
	userFlag := fs.String("user", "", "User")
	langFlag := fs.String("lang", "en", "Language of the words")
	statusFlag := fs.String("status", "", "New status: known, learning or new")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := vocab.ParseStatus(*statusFlag); err != nil {
		return err
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	words := make([]string, fs.NArg())
	for i, w := range fs.Args() {
		words[i] = lang.Fold(w)
	}
	if err := a.vocab().UpdateStatusBatch(ctx, uid, *langFlag, words, *statusFlag); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d words marked %s\n", len(words), *statusFlag)
	return nil
}

func runDefine(a *app, ctx context.Context, args []string) error {
	fs := a.flags("define")
	userFlag := fs.String("user", "", "User")
	langFlag := fs.String("lang", "en", "Language of the word")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("define needs a word and a definition")
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	word := lang.Fold(fs.Arg(0))
	def := strings.Join(fs.Args()[1:], " ")
	if err := a.vocab().SetDefinition(ctx, uid, *langFlag, word, def); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", word, def)
	return nil
}

func runWords(a *app, ctx context.Context, args []string) error {
	fs := a.flags("words")
	userFlag := fs.String("user", "", "User")
	langFlag := fs.String("lang", "", "Only this language")
	if err := fs.Parse(args); err != nil {
		return err
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	data, err := a.vocab().WordData(ctx, uid)
	if err != nil {
		return err
	}
	if *langFlag != "" {
		only := vocab.NewUserWordData()
		only.Status[*langFlag] = data.Language(*langFlag)
		if defs, ok := data.Definitions[*langFlag]; ok {
			only.Definitions[*langFlag] = defs
		}
		data = only
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func runSuggest(a *app, ctx context.Context, args []string) error {
	fs := a.flags("suggest")
	userFlag := fs.String("user", "", "User")
	idFlag := fs.Int64("id", 0, "Japanese article id")
	dictFlag := fs.String("dict", "jmdict-eng-common.json", "Path to a JMdict-simplified JSON file")
	downloadFlag := fs.Bool("download", false, "Download the dictionary if it is missing")
	applyFlag := fs.Bool("apply", false, "Store the suggestions as definitions")
	limitFlag := fs.Int("limit", 20, "Maximum number of suggestions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	art, err := db.GetArticle(ctx, a.conn, *idFlag)
	if err != nil {
		return err
	}
	if art.Language != "ja" {
		return fmt.Errorf("suggestions need a Japanese article, article %d is %q", art.ID, art.Language)
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}

	if *downloadFlag {
		if err := dictionary.NewDownloader(a.log).EnsureDictionary(ctx, *dictFlag); err != nil {
			return err
		}
	}
	entries, err := dictionary.LoadFile(*dictFlag)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	glossary := dictionary.NewGlossary(entries)
	a.log.WithField("entries", glossary.Len()).Debug("dictionary loaded")

	svc := a.vocab()
	data, err := svc.WordData(ctx, uid)
	if err != nil {
		return err
	}
	forms, err := lang.JapaneseMorphemes(art.Content)
	if err != nil {
		return err
	}
	bySurface := make(map[string]lang.Morpheme, len(forms))
	for _, m := range forms {
		if _, ok := bySurface[m.Surface]; !ok {
			bySurface[m.Surface] = m
		}
	}

	states := data.Language(art.Language)
	n := 0
	for _, wc := range lang.Frequencies(art.UniqueWords).Sorted() {
		if n >= *limitFlag {
			break
		}
		if states.StatusOf(wc.Word) == vocab.StatusKnown {
			continue
		}
		if _, ok := data.Definition(art.Language, wc.Word); ok {
			continue
		}
		m := bySurface[wc.Word]
		def, ok := glossary.SuggestForm(wc.Word, m.BaseForm, m.Reading)
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(a.out, "%s\t%s\n", wc.Word, def)
		if *applyFlag {
			if err := svc.SetDefinition(ctx, uid, art.Language, wc.Word, def); err != nil {
				return err
			}
		}
	}
	if n == 0 {
		fmt.Fprintln(a.out, "no suggestions")
	}
	return nil
}

func runSave(a *app, ctx context.Context, args []string) error {
	return a.savedArticle(ctx, "save", args, db.SaveArticle)
}

func runUnsave(a *app, ctx context.Context, args []string) error {
	return a.savedArticle(ctx, "unsave", args, db.UnsaveArticle)
}

func (a *app) savedArticle(ctx context.Context, name string, args []string,
	apply func(context.Context, db.DBExecutor, int64, int64) error) error {
	fs := a.flags(name)
	userFlag := fs.String("user", "", "User")
	idFlag := fs.Int64("id", 0, "Article id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	if err := apply(ctx, a.conn, uid, *idFlag); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s article %d for %s\n", name, *idFlag, *userFlag)
	return nil
}

func runSaved(a *app, ctx context.Context, args []string) error {
	return a.userArticles(ctx, "saved", args, db.ListSavedArticles)
}

func runUploaded(a *app, ctx context.Context, args []string) error {
	return a.userArticles(ctx, "uploaded", args, db.ListUploadedArticles)
}

func (a *app) userArticles(ctx context.Context, name string, args []string,
	list func(context.Context, db.DBExecutor, int64, int) ([]db.ArticleSummary, error)) error {
	fs := a.flags(name)
	userFlag := fs.String("user", "", "User")
	offsetFlag := fs.Int("offset", 0, "Number of articles to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	uid, err := a.userID(ctx, *userFlag)
	if err != nil {
		return err
	}
	found, err := list(ctx, a.conn, uid, *offsetFlag)
	if err != nil {
		return err
	}
	a.printSummaries(found)
	return nil
}

func runUsers(a *app, ctx context.Context, args []string) error {
	fs := a.flags("users")
	offsetFlag := fs.Int("offset", 0, "Number of users to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	users, err := db.ListUsers(ctx, a.conn, *offsetFlag)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", u.ID, u.Username, u.NativeLang)
	}
	return nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
