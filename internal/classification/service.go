package classification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/halalcheck/internal/catalog"
	"github.com/JaimeStill/halalcheck/internal/gemini"
	"github.com/JaimeStill/halalcheck/internal/parser"
	"github.com/JaimeStill/halalcheck/internal/prompts"
	"github.com/JaimeStill/halalcheck/pkg/cache"
	"github.com/JaimeStill/halalcheck/pkg/storage"
)

type service struct {
	store   catalog.Store
	gen     gemini.Generator
	parser  *parser.Parser
	archive storage.System
	cache   *cache.Loader
	logger  *slog.Logger
	now     func() time.Time
}

// New creates the classification system. archive may be nil, which
// disables response archiving.
func New(
	store catalog.Store,
	gen gemini.Generator,
	archive storage.System,
	loader *cache.Loader,
	logger *slog.Logger,
) System {
	return &service{
		store:   store,
		gen:     gen,
		parser:  parser.New(logger),
		archive: archive,
		cache:   loader,
		logger:  logger.With("system", "classification"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) ClassifyByNameOrBarcode(ctx context.Context, q ProductQuery) (*Result, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(q.Name)
	country := strings.TrimSpace(q.Country)
	kind, prompt := prompts.Subject(name, q.Barcode, country)

	subject := name
	if subject == "" {
		subject = strings.TrimSpace(q.Barcode)
	}

	s.logger.Info("classifying product", "subject", subject, "kind", kind, "country", country)

	return s.classify(ctx, prompt, parser.Input{
		Subject: subject,
		Country: country,
	}, kind)
}

func (s *service) ClassifyByNameList(ctx context.Context, q ListQuery) (*Result, error) {
	names := q.names()
	if len(names) == 0 {
		return nil, validationf("ingredient list is required")
	}

	country := strings.TrimSpace(q.Country)
	s.logger.Info("classifying ingredient list", "count", len(names), "country", country)

	return s.classify(ctx, prompts.List(names, country), parser.Input{
		Subject: prompts.JoinNames(names),
		Country: country,
		Batch:   true,
		Names:   names,
	}, prompts.KindList)
}

func (s *service) classify(ctx context.Context, prompt string, in parser.Input, kind prompts.Kind) (*Result, error) {
	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, upstream(err)
	}

	key := s.archiveResponse(ctx, in.Subject, text)

	if strings.TrimSpace(text) == "" {
		text = parser.NoIngredients
	}
	in.Text = text

	parsed := s.parser.Parse(in)

	var stored []catalog.Ingredient
	err = s.store.WithinTx(ctx, func(tx catalog.Store) error {
		var err error
		stored, err = Merge(ctx, tx, in.Country, parsed.Ingredients, s.now())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("persist ingredients: %w", err)
	}

	if len(stored) > 0 {
		s.invalidate(ctx)
	}

	return &Result{
		Subject:     in.Subject,
		Country:     in.Country,
		Kind:        kind,
		Tier:        parsed.Tier,
		ArchiveKey:  key,
		Ingredients: stored,
	}, nil
}

func (s *service) EvaluateProductStatus(ctx context.Context, productID uuid.UUID) (*Evaluation, error) {
	var eval *Evaluation
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		var err error
		eval, err = Evaluate(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product evaluated", "product_id", productID, "status", eval.Status)
	s.invalidate(ctx)
	return eval, nil
}

func (s *service) DiscoverAndEvaluate(ctx context.Context, productID uuid.UUID) (*Evaluation, error) {
	product, err := s.store.Products().Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	linked, err := s.store.Links().IngredientsOf(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(linked) > 0 {
		return s.EvaluateProductStatus(ctx, productID)
	}

	s.logger.Info("product has no ingredients, classifying", "product_id", productID)

	result, err := s.ClassifyByNameOrBarcode(ctx, ProductQuery{
		Name:    product.Name,
		Barcode: product.Barcode,
		Country: product.Country,
	})
	if err != nil {
		return nil, err
	}

	return s.LinkIngredients(ctx, productID, LinkCommand{Ingredients: result.Ingredients})
}

func (s *service) LinkIngredients(ctx context.Context, productID uuid.UUID, cmd LinkCommand) (*Evaluation, error) {
	var eval *Evaluation
	err := s.store.WithinTx(ctx, func(tx catalog.Store) error {
		if _, err := tx.Products().Find(ctx, productID); err != nil {
			return err
		}

		if cmd.Replace {
			if err := tx.Links().UnlinkProduct(ctx, productID); err != nil {
				return err
			}
		}

		if _, err := Link(ctx, tx, productID, cmd.Ingredients, s.now()); err != nil {
			return err
		}

		var err error
		eval, err = Evaluate(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingredients linked", "product_id", productID, "count", len(cmd.Ingredients), "status", eval.Status)
	s.invalidate(ctx)
	return eval, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalog.CacheProductsAll)
	}
}
