package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/cost-dashboard-go/internal/domain"

	"go.uber.org/zap"
)

type seedService struct {
	name, provider, category, description string
}

var (
	seedCategories = []domain.CategoryInput{
		{Name: "Infrastructure", Description: "Cloud infrastructure and hosting services"},
		{Name: "User License", Description: "User-based license subscriptions"},
		{Name: "AI Services", Description: "AI and machine learning services"},
		{Name: "Usage", Description: "Prepaid usage-based services"},
	}

	seedProviders = []domain.ProviderInput{
		{Name: "AWS", Website: "https://aws.amazon.com"},
		{Name: "Google", Website: "https://cloud.google.com"},
		{Name: "CDMon", Website: "https://www.cdmon.com"},
		{Name: "DNSmadeEasy", Website: "https://www.dnsmadeeasy.com"},
		{Name: "Microsoft", Website: "https://www.microsoft.com"},
		{Name: "Atlassian", Website: "https://www.atlassian.com"},
		{Name: "Beanstalk", Website: "https://beanstalkapp.com"},
		{Name: "Adobe", Website: "https://www.adobe.com"},
		{Name: "Jetbrains", Website: "https://www.jetbrains.com"},
		{Name: "OpenAI", Website: "https://openai.com"},
		{Name: "x.ai", Website: "https://x.ai"},
		{Name: "Firecrawl", Website: "https://firecrawl.dev"},
		{Name: "Tavily", Website: "https://tavily.com"},
		{Name: "Mureka", Website: "https://mureka.ai"},
		{Name: "Black Forest", Website: "https://blackforestlabs.ai"},
		{Name: "Replit", Website: "https://replit.com"},
		{Name: "Vercel", Website: "https://vercel.com"},
		{Name: "SerpAPI", Website: "https://serpapi.com"},
		{Name: "Figma", Website: "https://figma.com"},
	}

	seedServices = []seedService{
		{"AWS - Infra Cloud", "AWS", "Infrastructure", "Company-wide cloud infrastructure"},
		{"GCP - Infra Cloud", "Google", "Infrastructure", "Additional services (APIs and AI services)"},
		{"Compra Dominios", "CDMon", "Infrastructure", "Domain name reservations"},
		{"Proveedor DNS", "DNSmadeEasy", "Infrastructure", "DNS provider"},

		{"Google Workspace Enterprise Edition", "Google", "User License", "Google Workspace user licenses"},
		{"Office", "Microsoft", "User License", "Microsoft Office & Teams licenses"},
		{"Jira y Confluence", "Atlassian", "User License", "User license based"},
		{"SVN & GIT", "Beanstalk", "User License", "Repositories threshold license"},
		{"Adobe tools", "Adobe", "User License", "Adobe Pro, Photoshop & Creative Cloud licenses"},
		{"PHPstorm", "Jetbrains", "User License", "PHP Storm user licenses"},

		{"ChatGPT Staff Use", "OpenAI", "AI Services", "OpenAI suite by web"},
		{"ChatGPT Contents", "OpenAI", "AI Services", "OpenAI suite by web"},
		{"OpenAI API tools", "OpenAI", "AI Services", "Programatic access to OpenAI services"},
		{"Grok chat", "x.ai", "AI Services", "Grok chat by web"},
		{"Firecrawl - LLM web search", "Firecrawl", "AI Services", "Web search capability for LLMs"},
		{"Tavily - LLM web search", "Tavily", "AI Services", "Web search capability for LLMs"},
		{"Mureka AI - Audio creation (rouge)", "Mureka", "AI Services", "Audio generation model"},
		{"Flux AI", "Black Forest", "AI Services", "Image generation model"},
		{"Replit AI Vibe Coding", "Replit", "AI Services", "Vibe Coding Tool"},
		{"Vercel UX/UI AI Vibe Design", "Vercel", "AI Services", "Vibe Design Tool"},
		{"SerpAPI web search", "SerpAPI", "AI Services", "Web search capability for LLMs"},
		{"Figma design", "Figma", "AI Services", "Vibe Design Tool"},
	}
)

// SeedReport counts what SeedDefaults created.
type SeedReport struct {
	Categories int `json:"categories"`
	Providers  int `json:"providers"`
	Services   int `json:"services"`
}

// SeedDefaults creates the default catalog, skipping names that already
// exist. Running it twice creates nothing the second time.
func (s *CostService) SeedDefaults(ctx context.Context) (*SeedReport, error) {
	ctx, span := tracer.Start(ctx, "CostService.SeedDefaults")
	defer span.End()

	report := &SeedReport{}

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	catIDs := make(map[string]int64, len(cats))
	for _, c := range cats {
		catIDs[c.Name] = c.ID
	}
	for i := range seedCategories {
		in := seedCategories[i]
		if _, ok := catIDs[in.Name]; ok {
			continue
		}
		c, err := s.CreateCategory(ctx, &in)
		if err != nil {
			return nil, fmt.Errorf("seed category %q: %w", in.Name, err)
		}
		catIDs[c.Name] = c.ID
		report.Categories++
	}

	provs, err := s.store.ListProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed providers: %w", err)
	}
	provIDs := make(map[string]int64, len(provs))
	for _, p := range provs {
		provIDs[p.Name] = p.ID
	}
	for i := range seedProviders {
		in := seedProviders[i]
		if _, ok := provIDs[in.Name]; ok {
			continue
		}
		p, err := s.CreateProvider(ctx, &in)
		if err != nil {
			return nil, fmt.Errorf("seed provider %q: %w", in.Name, err)
		}
		provIDs[p.Name] = p.ID
		report.Providers++
	}

	existing, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed services: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, svc := range existing {
		have[strings.ToLower(svc.Name)] = true
	}
	for _, def := range seedServices {
		if have[strings.ToLower(def.name)] {
			continue
		}
		in := &domain.ServiceInput{
			ProviderID:  provIDs[def.provider],
			CategoryID:  catIDs[def.category],
			Name:        def.name,
			Description: def.description,
		}
		if _, err := s.CreateService(ctx, in); err != nil {
			return nil, fmt.Errorf("seed service %q: %w", def.name, err)
		}
		report.Services++
	}

	s.logger.Info("seed complete",
		zap.Int("categories", report.Categories),
		zap.Int("providers", report.Providers),
		zap.Int("services", report.Services),
	)
	return report, nil
}
