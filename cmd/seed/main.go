package main

import (
	"context"
	"log"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"knowledge-copilot-be/internal/config"
	"knowledge-copilot-be/internal/model"
	"knowledge-copilot-be/pkg/database"
	"knowledge-copilot-be/pkg/embedding"
)

type seedChunk struct {
	Section string
	Text    string
	Page    int
}

type seedDocument struct {
	Title      string
	Language   string
	Status     string
	AccessTags map[string]interface{}
	Version    string
	SourceURI  string
	Roles      []string
	Chunks     []seedChunk
}

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}

	color.Cyan("=== Knowledge Copilot Seeder ===")
	color.Cyan("Embedding model: %s", provider.ModelId())

	ctx := context.Background()

	// 1. Roles
	roleNames := []string{"employee", "rm_corporate", "compliance", "admin"}
	roleIds := map[string]uuid.UUID{}
	for _, name := range roleNames {
		role := model.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			log.Fatalf("Error: seeding role %s: %v", name, err)
		}
		roleIds[name] = role.Id
		color.Green("Role ready: %s", name)
	}

	// 2. Documents, versions, grants, chunks, embeddings
	for _, doc := range seedDocuments() {
		if err := seedOne(ctx, db, provider, doc, roleIds); err != nil {
			color.Red("Failed to seed %q: %v", doc.Title, err)
			continue
		}
		color.Green("Seeded document: %s (%d chunks)", doc.Title, len(doc.Chunks))
	}

	color.Cyan("✅ Seeding complete")
}

func seedOne(ctx context.Context, db *gorm.DB, provider embedding.Provider, doc seedDocument, roleIds map[string]uuid.UUID) error {
	document := model.Document{
		Title:      doc.Title,
		Language:   doc.Language,
		Status:     doc.Status,
		AccessTags: datatypes.JSONMap(doc.AccessTags),
	}
	if err := db.Where("title = ?", doc.Title).FirstOrCreate(&document).Error; err != nil {
		return err
	}

	version := model.DocumentVersion{
		DocumentId: document.Id,
		Version:    doc.Version,
		SourceURI:  doc.SourceURI,
		IsActive:   true,
	}
	if err := db.Where("document_id = ? AND version = ?", document.Id, doc.Version).
		FirstOrCreate(&version).Error; err != nil {
		return err
	}

	for _, roleName := range doc.Roles {
		grant := model.AccessGrant{
			DocumentId: document.Id,
			RoleId:     roleIds[roleName],
		}
		if err := db.Where("document_id = ? AND role_id = ?", document.Id, grant.RoleId).
			FirstOrCreate(&grant).Error; err != nil {
			return err
		}
	}

	for idx, sc := range doc.Chunks {
		page := sc.Page
		chunk := model.Chunk{
			DocumentVersionId: version.Id,
			ChunkIndex:        idx,
			Text:              sc.Text,
			Section:           sc.Section,
			PageStart:         &page,
			PageEnd:           &page,
			OffsetStart:       0,
			OffsetEnd:         utf8.RuneCountInString(sc.Text),
		}
		if err := db.Where("document_version_id = ? AND chunk_index = ?", version.Id, idx).
			FirstOrCreate(&chunk).Error; err != nil {
			return err
		}

		var count int64
		db.Model(&model.ChunkEmbedding{}).
			Where("chunk_id = ? AND model = ?", chunk.Id, provider.ModelId()).
			Count(&count)
		if count > 0 {
			continue
		}

		result, err := provider.Embed(ctx, sc.Text)
		if err != nil {
			return err
		}
		emb := model.ChunkEmbedding{
			ChunkId:   chunk.Id,
			Model:     result.Model,
			Embedding: pgvector.NewVector(result.Vector),
		}
		if err := db.Create(&emb).Error; err != nil {
			return err
		}
	}

	return nil
}

func seedDocuments() []seedDocument {
	return []seedDocument{
		{
			Title:     "Retail Account Opening Policy",
			Language:  "en",
			Status:    "approved",
			Version:   "2.1",
			SourceURI: "https://kb.example.com/policies/retail-account-opening-v2.1.pdf",
			AccessTags: map[string]interface{}{
				"department": "retail",
			},
			Roles: []string{"employee", "compliance"},
			Chunks: []seedChunk{
				{Section: "Eligibility", Page: 2, Text: "Retail accounts may be opened for residents aged 18 or above holding a valid civil ID. Minors require a guardian-held custodial account as described in section 4."},
				{Section: "Required Documents", Page: 3, Text: "Account opening requires a valid civil ID, proof of address issued within the last three months, and a completed KYC questionnaire signed by the applicant."},
				{Section: "Fees", Page: 5, Text: "The standard retail account carries no monthly maintenance fee when the average balance stays above 200 KWD. Below that threshold a fee of 1 KWD per month applies."},
			},
		},
		{
			Title:     "Corporate Credit Facility Guidelines",
			Language:  "en",
			Status:    "approved",
			Version:   "1.4",
			SourceURI: "https://kb.example.com/policies/corporate-credit-v1.4.pdf",
			AccessTags: map[string]interface{}{
				"department": "corporate",
				"clearance":  "restricted",
			},
			Roles: []string{"rm_corporate"},
			Chunks: []seedChunk{
				{Section: "Facility Limits", Page: 1, Text: "Corporate credit facilities above 500,000 KWD require approval by the credit committee. Facilities below this threshold may be approved by two authorized credit officers."},
				{Section: "Collateral", Page: 4, Text: "Acceptable collateral includes real estate within Kuwait, listed equities subject to a 30 percent haircut, and cash deposits held with the bank."},
			},
		},
		{
			Title:     "سياسة التمويل الشخصي",
			Language:  "ar",
			Status:    "approved",
			Version:   "3.0",
			SourceURI: "https://kb.example.com/policies/personal-finance-ar-v3.0.pdf",
			AccessTags: map[string]interface{}{
				"department": "retail",
			},
			Roles: []string{"employee"},
			Chunks: []seedChunk{
				{Section: "الحد الأقصى", Page: 2, Text: "الحد الأقصى للتمويل الشخصي هو خمسة وعشرون ألف دينار كويتي، على ألا يتجاوز القسط الشهري أربعين بالمئة من صافي الراتب."},
				{Section: "المستندات المطلوبة", Page: 3, Text: "يتطلب طلب التمويل الشخصي شهادة راتب حديثة، وكشف حساب لآخر ثلاثة أشهر، وبطاقة مدنية سارية المفعول."},
			},
		},
		{
			Title:     "Draft Treasury Operations Manual",
			Language:  "en",
			Status:    "draft",
			Version:   "0.9",
			SourceURI: "https://kb.example.com/policies/treasury-ops-draft.pdf",
			AccessTags: map[string]interface{}{
				"department": "treasury",
			},
			Roles: []string{"admin"},
			Chunks: []seedChunk{
				{Section: "Scope", Page: 1, Text: "This draft manual covers treasury settlement workflows and is pending approval. Content is subject to change before publication."},
			},
		},
	}
}
