package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-copilot-be/internal/entity"
	"knowledge-copilot-be/internal/repository/contract"
	"knowledge-copilot-be/internal/repository/unitofwork"
	"knowledge-copilot-be/pkg/database"
)

const embeddingModel = "integration-test-model"

// queryVector returns a fixed 768-dim unit vector. Storing and querying the
// same vector makes the seeded chunk the nearest neighbor by construction.
func queryVector() []float32 {
	v := make([]float32, 768)
	v[0] = 1
	return v
}

type fixture struct {
	uow       unitofwork.UnitOfWork
	roleName  string
	tags      map[string]interface{}
	status    string
	withGrant bool
	chunkId   uuid.UUID
}

// seedDocument creates one document with an active version, one chunk, one
// stored embedding, and (optionally) a grant for a fresh role.
func seedDocument(t *testing.T, f fixture) fixture {
	t.Helper()
	ctx := context.Background()

	doc := &entity.Document{
		Id:         uuid.New(),
		Title:      "Integration Doc " + uuid.NewString(),
		Language:   "en",
		Status:     f.status,
		AccessTags: f.tags,
	}
	require.NoError(t, f.uow.DocumentRepository().Create(ctx, doc))

	version := &entity.DocumentVersion{
		Id:         uuid.New(),
		DocumentId: doc.Id,
		Version:    "1.0",
		SourceURI:  "https://kb.example.com/integration/" + doc.Id.String(),
		IsActive:   true,
	}
	require.NoError(t, f.uow.DocumentRepository().CreateVersion(ctx, version))

	role := &entity.Role{Id: uuid.New(), Name: f.roleName}
	require.NoError(t, f.uow.RoleRepository().Create(ctx, role))

	if f.withGrant {
		grant := &entity.AccessGrant{Id: uuid.New(), DocumentId: doc.Id, RoleId: role.Id}
		require.NoError(t, f.uow.AccessGrantRepository().Create(ctx, grant))
	}

	chunk := &entity.Chunk{
		Id:                uuid.New(),
		DocumentVersionId: version.Id,
		ChunkIndex:        0,
		Text:              "Integration chunk text for visibility checks.",
		OffsetStart:       0,
		OffsetEnd:         45,
	}
	require.NoError(t, f.uow.ChunkRepository().Create(ctx, chunk))
	f.chunkId = chunk.Id

	emb := &entity.ChunkEmbedding{
		Id:        uuid.New(),
		ChunkId:   chunk.Id,
		Model:     embeddingModel,
		Embedding: queryVector(),
	}
	require.NoError(t, f.uow.ChunkEmbeddingRepository().Create(ctx, emb))

	return f
}

func search(t *testing.T, uow unitofwork.UnitOfWork, roles []string, attrs map[string]interface{}) []*entity.RetrievedChunk {
	t.Helper()
	rows, err := uow.ChunkEmbeddingRepository().SearchVisible(context.Background(), contract.VisibleSearchQuery{
		Embedding:  queryVector(),
		Model:      embeddingModel,
		RoleNames:  roles,
		Attributes: attrs,
		Limit:      50,
	})
	require.NoError(t, err)
	return rows
}

func containsChunk(rows []*entity.RetrievedChunk, id uuid.UUID) bool {
	for _, row := range rows {
		if row.ChunkId == id {
			return true
		}
	}
	return false
}

// Exercises the eligibility predicate end to end against a real database:
// similarity search must only ever surface approved documents the requester
// holds a grant and matching attributes for.
func TestAccessFilteredSearch(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)

	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(context.Background())

	grantedRole := "it-role-" + uuid.NewString()
	granted := seedDocument(t, fixture{
		uow:       uow,
		roleName:  grantedRole,
		tags:      map[string]interface{}{"department": "retail"},
		status:    "approved",
		withGrant: true,
	})

	restrictedRole := "it-role-" + uuid.NewString()
	restricted := seedDocument(t, fixture{
		uow:       uow,
		roleName:  restrictedRole,
		tags:      map[string]interface{}{"department": "corporate", "clearance": "restricted"},
		status:    "approved",
		withGrant: true,
	})

	draftRole := "it-role-" + uuid.NewString()
	draft := seedDocument(t, fixture{
		uow:       uow,
		roleName:  draftRole,
		tags:      map[string]interface{}{},
		status:    "draft",
		withGrant: true,
	})

	ungranted := seedDocument(t, fixture{
		uow:       uow,
		roleName:  "it-role-" + uuid.NewString(),
		tags:      map[string]interface{}{},
		status:    "approved",
		withGrant: false,
	})

	retailAttrs := map[string]interface{}{"department": "retail"}

	t.Run("granted role with matching attributes sees the chunk", func(t *testing.T) {
		rows := search(t, uow, []string{grantedRole}, retailAttrs)
		assert.True(t, containsChunk(rows, granted.chunkId))
	})

	t.Run("role without a grant sees nothing", func(t *testing.T) {
		rows := search(t, uow, []string{"it-role-" + uuid.NewString()}, retailAttrs)
		assert.False(t, containsChunk(rows, granted.chunkId))
	})

	t.Run("attribute mismatch hides tagged documents", func(t *testing.T) {
		// Right role, but the requester lacks the restricted clearance.
		rows := search(t, uow, []string{restrictedRole}, map[string]interface{}{"department": "corporate"})
		assert.False(t, containsChunk(rows, restricted.chunkId))

		full := map[string]interface{}{"department": "corporate", "clearance": "restricted"}
		rows = search(t, uow, []string{restrictedRole}, full)
		assert.True(t, containsChunk(rows, restricted.chunkId))
	})

	t.Run("draft documents are invisible even with a grant", func(t *testing.T) {
		rows := search(t, uow, []string{draftRole}, map[string]interface{}{})
		assert.False(t, containsChunk(rows, draft.chunkId))
	})

	t.Run("zero grants means visible to nobody", func(t *testing.T) {
		rows := search(t, uow, []string{grantedRole, restrictedRole, draftRole}, retailAttrs)
		assert.False(t, containsChunk(rows, ungranted.chunkId))
	})

	t.Run("different embedding model is never compared", func(t *testing.T) {
		rows, err := uow.ChunkEmbeddingRepository().SearchVisible(context.Background(), contract.VisibleSearchQuery{
			Embedding:  queryVector(),
			Model:      "some-other-model",
			RoleNames:  []string{grantedRole},
			Attributes: retailAttrs,
			Limit:      50,
		})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("document listing honors the same predicate", func(t *testing.T) {
		visible, err := uow.DocumentRepository().FindVisible(context.Background(), []string{grantedRole}, retailAttrs, 100, 0)
		require.NoError(t, err)

		var titles []string
		for _, v := range visible {
			titles = append(titles, v.Document.Title)
			if v.ActiveVersion != nil {
				assert.True(t, v.ActiveVersion.IsActive)
			}
		}
		assert.NotEmpty(t, titles)
	})
}
