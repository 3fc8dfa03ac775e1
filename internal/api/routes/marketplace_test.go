package routes

import (
	"bytes"
	"juba-homez/internal/models"
	"juba-homez/internal/services"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// marketplace seeds an admin, two owners, a broker, a photographer and a customer.
type marketplace struct {
	*testEnv
	admin, owner, otherOwner, broker, photographer, customer *models.User
}

func newMarketplace(t *testing.T) *marketplace {
	env := newTestEnv(t)
	return &marketplace{
		testEnv:      env,
		admin:        createTestUser(t, env, "admin@x.com", models.RoleAdmin, models.UserActive),
		owner:        createTestUser(t, env, "owner@x.com", models.RoleOwner, models.UserActive),
		otherOwner:   createTestUser(t, env, "other@x.com", models.RoleOwner, models.UserActive),
		broker:       createTestUser(t, env, "broker@x.com", models.RoleBroker, models.UserActive),
		photographer: createTestUser(t, env, "shooter@x.com", models.RolePhotographer, models.UserActive),
		customer:     createTestUser(t, env, "customer@x.com", models.RoleCustomer, models.UserActive),
	}
}

func (m *marketplace) token(t *testing.T, u *models.User) string {
	return createTestToken(t, m.testEnv, u)
}

// createListing creates a listing as user and optionally approves it.
func (m *marketplace) createListing(t *testing.T, u *models.User, approve bool) models.Property {
	t.Helper()
	w := m.do(t, "POST", "/api/v1/properties", m.token(t, u), map[string]any{
		"title":         "Two bedroom house in Hai Cinema",
		"listing_type":  "rent",
		"property_type": "house",
		"price":         850,
		"currency":      "usd",
		"city":          "Juba",
		"area":          "Hai Cinema",
		"bedrooms":      2,
	})
	assertStatus(t, w, http.StatusCreated)
	var p models.Property
	decodeData(t, w, &p)

	if approve {
		w = m.do(t, "PATCH", "/api/v1/admin/properties/"+itoa(p.ID)+"/approve", m.token(t, m.admin), nil)
		assertStatus(t, w, http.StatusOK)
	}
	return p
}

func TestPropertyRoutes(t *testing.T) {
	m := newMarketplace(t)

	t.Run("POST /properties - customers cannot list", func(t *testing.T) {
		w := m.do(t, "POST", "/api/v1/properties", m.token(t, m.customer), map[string]any{
			"title": "Plot", "listing_type": "sale", "property_type": "land", "price": 100,
		})
		assertStatus(t, w, http.StatusForbidden)
	})

	t.Run("POST /properties - anonymous", func(t *testing.T) {
		w := m.do(t, "POST", "/api/v1/properties", "", map[string]any{"title": "Plot"})
		assertStatus(t, w, http.StatusUnauthorized)
	})

	listing := m.createListing(t, m.owner, false)

	t.Run("new listings are pending and hidden", func(t *testing.T) {
		assert.Equal(t, models.ApprovalPending, listing.ApprovalStatus)
		assert.Equal(t, m.owner.ID, listing.OwnerID)
		assert.Equal(t, "USD", listing.Currency)

		w := m.do(t, "GET", "/api/v1/properties", "", nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, int64(0), decodeMeta(t, w).Total)

		w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID), "", nil)
		assertStatus(t, w, http.StatusNotFound)

		w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.owner), nil)
		assertStatus(t, w, http.StatusOK)

		w = m.do(t, "GET", "/api/v1/properties?mine=true", m.token(t, m.owner), nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, int64(1), decodeMeta(t, w).Total)
	})

	t.Run("PATCH /properties/:id - not the owner", func(t *testing.T) {
		w := m.do(t, "PATCH", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.otherOwner), map[string]any{"price": 1})
		assertStatus(t, w, http.StatusForbidden)
		assert.Equal(t, int64(0), countAudit(t, m.testEnv, services.ActionPropertyUpdated, listing.ID))
	})

	t.Run("PATCH /properties/:id - unknown listing", func(t *testing.T) {
		w := m.do(t, "PATCH", "/api/v1/properties/9999", m.token(t, m.owner), map[string]any{"price": 1})
		assertStatus(t, w, http.StatusNotFound)

		w = m.do(t, "PATCH", "/api/v1/properties/abc", m.token(t, m.owner), map[string]any{"price": 1})
		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("PATCH /properties/:id - owner and admin", func(t *testing.T) {
		w := m.do(t, "PATCH", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.owner), map[string]any{"price": 900})
		assertStatus(t, w, http.StatusOK)
		var p models.Property
		decodeData(t, w, &p)
		assert.Equal(t, 900.0, p.Price)

		w = m.do(t, "PATCH", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.admin), map[string]any{
			"broker_id": m.broker.ID,
		})
		assertStatus(t, w, http.StatusOK)
		decodeData(t, w, &p)
		require.NotNil(t, p.BrokerID)
		assert.Equal(t, m.broker.ID, *p.BrokerID)
	})

	t.Run("the assigned broker may now edit", func(t *testing.T) {
		w := m.do(t, "PATCH", "/api/v1/properties/"+itoa(listing.ID)+"/status", m.token(t, m.broker), map[string]any{"status": "under_offer"})
		assertStatus(t, w, http.StatusOK)

		w = m.do(t, "PATCH", "/api/v1/properties/"+itoa(listing.ID)+"/status", m.token(t, m.broker), map[string]any{"status": "gone"})
		assertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("approval publishes the listing", func(t *testing.T) {
		w := m.do(t, "PATCH", "/api/v1/admin/properties/"+itoa(listing.ID)+"/approve", m.token(t, m.admin), nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, int64(1), countAudit(t, m.testEnv, services.ActionPropertyApproved, listing.ID))

		w = m.do(t, "GET", "/api/v1/properties?city=juba&listing_type=rent&min_price=500", "", nil)
		assertStatus(t, w, http.StatusOK)
		var list []models.Property
		decodeData(t, w, &list)
		require.Len(t, list, 1)
		assert.Equal(t, listing.ID, list[0].ID)

		w = m.do(t, "GET", "/api/v1/properties?max_price=100", "", nil)
		assertStatus(t, w, http.StatusOK)
		assert.Equal(t, int64(0), decodeMeta(t, w).Total)

		w = m.do(t, "GET", "/api/v1/properties/areas", "", nil)
		assertStatus(t, w, http.StatusOK)
		var areas []services.AreaCount
		decodeData(t, w, &areas)
		require.Len(t, areas, 1)
		assert.Equal(t, "Hai Cinema", areas[0].Area)
		assert.Equal(t, int64(1), areas[0].Count)
	})

	t.Run("owners are notified of moderation", func(t *testing.T) {
		w := m.do(t, "GET", "/api/v1/notifications?unread=true", m.token(t, m.owner), nil)
		assertStatus(t, w, http.StatusOK)
		var notes []models.Notification
		decodeData(t, w, &notes)
		require.NotEmpty(t, notes)
		assert.Equal(t, models.NotifyApproval, notes[0].Type)

		w = m.do(t, "PATCH", "/api/v1/notifications/"+itoa(notes[0].ID)+"/read", m.token(t, m.owner), nil)
		assertStatus(t, w, http.StatusOK)

		// other users cannot touch it
		w = m.do(t, "PATCH", "/api/v1/notifications/"+itoa(notes[0].ID)+"/read", m.token(t, m.customer), nil)
		assertStatus(t, w, http.StatusNotFound)
	})

	t.Run("DELETE /properties/:id soft-deletes", func(t *testing.T) {
		w := m.do(t, "DELETE", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.otherOwner), nil)
		assertStatus(t, w, http.StatusForbidden)

		w = m.do(t, "DELETE", "/api/v1/properties/"+itoa(listing.ID), m.token(t, m.owner), nil)
		assertStatus(t, w, http.StatusOK)

		w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID), "", nil)
		assertStatus(t, w, http.StatusNotFound)

		var n int64
		require.NoError(t, m.db.Unscoped().Model(&models.Property{}).Where("id = ?", listing.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})
}

func TestBrokerListingForOwner(t *testing.T) {
	m := newMarketplace(t)

	w := m.do(t, "POST", "/api/v1/properties", m.token(t, m.broker), map[string]any{
		"title": "Office block", "listing_type": "rent", "property_type": "office", "price": 4000,
		"owner_id": m.owner.ID,
	})
	assertStatus(t, w, http.StatusCreated)
	var p models.Property
	decodeData(t, w, &p)
	assert.Equal(t, m.owner.ID, p.OwnerID)
	require.NotNil(t, p.BrokerID)
	assert.Equal(t, m.broker.ID, *p.BrokerID)

	w = m.do(t, "POST", "/api/v1/properties", m.token(t, m.broker), map[string]any{
		"title": "Office block", "listing_type": "rent", "property_type": "office", "price": 4000,
		"owner_id": m.customer.ID,
	})
	assertStatus(t, w, http.StatusBadRequest)
}

// pngBytes is the PNG signature followed by an IHDR chunk start.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func (m *marketplace) upload(t *testing.T, token string, propertyID uint, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/properties/"+itoa(propertyID)+"/media", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	m.router.ServeHTTP(w, req)
	return w
}

func TestMediaRoutes(t *testing.T) {
	m := newMarketplace(t)
	listing := m.createListing(t, m.owner, true)

	w := m.upload(t, m.token(t, m.otherOwner), listing.ID, map[string][]byte{"house.png": pngBytes})
	assertStatus(t, w, http.StatusForbidden)

	w = m.upload(t, m.token(t, m.owner), listing.ID, map[string][]byte{"notes.txt": []byte("hello there")})
	assertStatus(t, w, http.StatusBadRequest)

	w = m.upload(t, m.token(t, m.owner), listing.ID, map[string][]byte{"house.png": pngBytes})
	assertStatus(t, w, http.StatusCreated)
	var media []models.Media
	decodeData(t, w, &media)
	require.Len(t, media, 1)
	assert.Equal(t, models.MediaImage, media[0].Kind)
	assert.Equal(t, models.ApprovalPending, media[0].ApprovalStatus)
	assert.Contains(t, media[0].URL, "/uploads/")

	// the stored file is served
	sw := m.do(t, "GET", media[0].URL, "", nil)
	assertStatus(t, sw, http.StatusOK)

	w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID)+"/media", "", nil)
	assertStatus(t, w, http.StatusOK)
	var public []models.Media
	decodeData(t, w, &public)
	assert.Empty(t, public)

	w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID)+"/media", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	var managed []models.Media
	decodeData(t, w, &managed)
	assert.Len(t, managed, 1)

	w = m.do(t, "PATCH", "/api/v1/admin/media/"+itoa(media[0].ID)+"/approve", m.token(t, m.admin), nil)
	assertStatus(t, w, http.StatusOK)

	w = m.do(t, "GET", "/api/v1/properties/"+itoa(listing.ID)+"/media", "", nil)
	assertStatus(t, w, http.StatusOK)
	decodeData(t, w, &public)
	assert.Len(t, public, 1)

	w = m.do(t, "DELETE", "/api/v1/media/"+itoa(media[0].ID), m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "DELETE", "/api/v1/media/"+itoa(media[0].ID), m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), countAudit(t, m.testEnv, services.ActionMediaDeleted, media[0].ID))
}

func TestInquiryRoutes(t *testing.T) {
	m := newMarketplace(t)
	listing := m.createListing(t, m.owner, true)
	pendingListing := m.createListing(t, m.otherOwner, false)

	w := m.do(t, "POST", "/api/v1/properties/"+itoa(pendingListing.ID)+"/inquiries", "", map[string]any{
		"name": "Nyandeng", "email": "nyandeng@x.com", "message": "Is it available?",
	})
	assertStatus(t, w, http.StatusNotFound)

	w = m.do(t, "POST", "/api/v1/properties/"+itoa(listing.ID)+"/inquiries", "", map[string]any{
		"message": "Anonymous without contact details",
	})
	assertStatus(t, w, http.StatusBadRequest)

	w = m.do(t, "POST", "/api/v1/inquiries", m.token(t, m.customer), map[string]any{
		"property_id": listing.ID, "message": "Can I visit on Friday?",
	})
	assertStatus(t, w, http.StatusCreated)
	var inquiry models.Inquiry
	decodeData(t, w, &inquiry)
	assert.Equal(t, m.customer.Email, inquiry.Email)

	w = m.do(t, "GET", "/api/v1/inquiries", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), decodeMeta(t, w).Total)

	w = m.do(t, "GET", "/api/v1/inquiries", m.token(t, m.otherOwner), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(0), decodeMeta(t, w).Total)

	w = m.do(t, "GET", "/api/v1/inquiries/"+itoa(inquiry.ID), m.token(t, m.otherOwner), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "GET", "/api/v1/inquiries", m.token(t, m.customer), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "POST", "/api/v1/inquiries/"+itoa(inquiry.ID)+"/replies", m.token(t, m.owner), map[string]any{
		"message": "Yes, Friday at 10 works.",
	})
	assertStatus(t, w, http.StatusCreated)

	w = m.do(t, "GET", "/api/v1/inquiries/"+itoa(inquiry.ID), m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	decodeData(t, w, &inquiry)
	assert.Equal(t, models.InquiryReplied, inquiry.Status)
	assert.Len(t, inquiry.Replies, 1)

	w = m.do(t, "GET", "/api/v1/notifications", m.token(t, m.customer), nil)
	assertStatus(t, w, http.StatusOK)
	var notes []models.Notification
	decodeData(t, w, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyInquiryReply, notes[0].Type)
}

func TestViewingRoutes(t *testing.T) {
	m := newMarketplace(t)
	listing := m.createListing(t, m.owner, true)
	future := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	w := m.do(t, "POST", "/api/v1/viewings/properties/"+itoa(listing.ID)+"/requests", "", map[string]any{
		"name": "Lado", "email": "lado@x.com", "preferred_at": future,
	})
	assertStatus(t, w, http.StatusCreated)
	var request models.ViewingRequest
	decodeData(t, w, &request)

	w = m.do(t, "GET", "/api/v1/viewings/requests", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), decodeMeta(t, w).Total)

	w = m.do(t, "POST", "/api/v1/viewings", m.token(t, m.otherOwner), map[string]any{
		"request_id": request.ID, "scheduled_at": future,
	})
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "POST", "/api/v1/viewings", m.token(t, m.owner), map[string]any{
		"request_id": request.ID, "scheduled_at": time.Now().Add(-time.Hour),
	})
	assertStatus(t, w, http.StatusBadRequest)

	w = m.do(t, "POST", "/api/v1/viewings", m.token(t, m.owner), map[string]any{
		"request_id": request.ID, "scheduled_at": future, "assigned_to": m.photographer.ID,
	})
	assertStatus(t, w, http.StatusCreated)
	var viewing models.Viewing
	decodeData(t, w, &viewing)
	assert.Equal(t, listing.ID, viewing.PropertyID)

	var stored models.ViewingRequest
	require.NoError(t, m.db.First(&stored, request.ID).Error)
	assert.Equal(t, models.RequestScheduled, stored.Status)

	w = m.do(t, "GET", "/api/v1/viewings", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), decodeMeta(t, w).Total)

	w = m.do(t, "GET", "/api/v1/viewings?from="+future.Add(time.Hour).Format(time.RFC3339), m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(0), decodeMeta(t, w).Total)

	w = m.do(t, "GET", "/api/v1/viewings?from=yesterday", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusBadRequest)

	later := future.Add(24 * time.Hour)
	w = m.do(t, "PATCH", "/api/v1/viewings/"+itoa(viewing.ID)+"/reschedule", m.token(t, m.owner), map[string]any{"scheduled_at": later})
	assertStatus(t, w, http.StatusOK)
	decodeData(t, w, &viewing)
	assert.Equal(t, models.ViewingRescheduled, viewing.Status)

	w = m.do(t, "PATCH", "/api/v1/viewings/"+itoa(viewing.ID)+"/cancel", m.token(t, m.owner), map[string]any{"reason": "no"})
	assertStatus(t, w, http.StatusBadRequest)

	w = m.do(t, "PATCH", "/api/v1/viewings/"+itoa(viewing.ID)+"/cancel", m.token(t, m.owner), map[string]any{"reason": "Tenant found"})
	assertStatus(t, w, http.StatusOK)

	w = m.do(t, "PATCH", "/api/v1/viewings/"+itoa(viewing.ID)+"/cancel", m.token(t, m.owner), map[string]any{"reason": "Tenant found"})
	assertStatus(t, w, http.StatusConflict)
}

func TestPhotoJobRoutes(t *testing.T) {
	m := newMarketplace(t)
	listing := m.createListing(t, m.owner, false)
	second := createTestUser(t, m.testEnv, "second@x.com", models.RolePhotographer, models.UserActive)

	w := m.do(t, "POST", "/api/v1/photo-jobs/properties/"+itoa(listing.ID), m.token(t, m.otherOwner), map[string]any{"notes": "Exterior"})
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "POST", "/api/v1/photo-jobs/properties/"+itoa(listing.ID), m.token(t, m.owner), map[string]any{
		"notes": "Exterior and living room", "budget": 120,
	})
	assertStatus(t, w, http.StatusCreated)
	var job models.PhotoJob
	decodeData(t, w, &job)
	assert.Equal(t, models.JobOpen, job.Status)
	path := "/api/v1/photo-jobs/" + itoa(job.ID)

	w = m.do(t, "GET", "/api/v1/photo-jobs/open", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), decodeMeta(t, w).Total)

	w = m.do(t, "GET", "/api/v1/photo-jobs/open", m.token(t, m.customer), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "PATCH", path+"/complete", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "PATCH", path+"/accept", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusOK)
	decodeData(t, w, &job)
	assert.Equal(t, models.JobAccepted, job.Status)
	require.NotNil(t, job.PhotographerID)
	assert.Equal(t, m.photographer.ID, *job.PhotographerID)

	w = m.do(t, "PATCH", path+"/accept", m.token(t, second), nil)
	assertStatus(t, w, http.StatusConflict)

	w = m.do(t, "PATCH", path+"/schedule", m.token(t, second), map[string]any{"scheduled_at": time.Now().Add(time.Hour)})
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "PATCH", path+"/complete", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusConflict)

	w = m.do(t, "PATCH", path+"/schedule", m.token(t, m.photographer), map[string]any{"scheduled_at": time.Now().Add(24 * time.Hour)})
	assertStatus(t, w, http.StatusOK)

	// the assigned photographer may now upload to the listing
	w = m.upload(t, m.token(t, m.photographer), listing.ID, map[string][]byte{"front.png": pngBytes})
	assertStatus(t, w, http.StatusCreated)
	w = m.upload(t, m.token(t, second), listing.ID, map[string][]byte{"front.png": pngBytes})
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "POST", path+"/messages", m.token(t, m.photographer), map[string]any{"message": "Arriving at 9"})
	assertStatus(t, w, http.StatusCreated)
	w = m.do(t, "POST", path+"/messages", m.token(t, second), map[string]any{"message": "Me too"})
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "GET", path+"/messages", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	var messages []models.PhotoJobMessage
	decodeData(t, w, &messages)
	require.Len(t, messages, 1)

	w = m.do(t, "PATCH", path+"/complete", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusOK)
	decodeData(t, w, &job)
	assert.Equal(t, models.JobCompleted, job.Status)

	w = m.do(t, "GET", "/api/v1/photo-jobs?status=completed", m.token(t, m.photographer), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, int64(1), decodeMeta(t, w).Total)
}

func TestAnalyticsRoutes(t *testing.T) {
	m := newMarketplace(t)
	listing := m.createListing(t, m.owner, true)

	for i := 0; i < 3; i++ {
		w := m.do(t, "POST", "/api/v1/analytics/events", "", map[string]any{"property_id": listing.ID, "type": "view"})
		assertStatus(t, w, http.StatusCreated)
	}
	w := m.do(t, "POST", "/api/v1/analytics/events", "", map[string]any{"property_id": listing.ID, "type": "teleport"})
	assertStatus(t, w, http.StatusBadRequest)

	w = m.do(t, "GET", "/api/v1/analytics/my-properties", m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	var stats []services.ListingStats
	decodeData(t, w, &stats)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Events["view"])

	w = m.do(t, "GET", "/api/v1/analytics/properties/"+itoa(listing.ID), m.token(t, m.otherOwner), nil)
	assertStatus(t, w, http.StatusForbidden)

	w = m.do(t, "GET", "/api/v1/analytics/properties/"+itoa(listing.ID), m.token(t, m.owner), nil)
	assertStatus(t, w, http.StatusOK)
	var report services.PropertyReport
	decodeData(t, w, &report)
	assert.Len(t, report.DailyViews, 30)
	assert.Equal(t, int64(3), report.DailyViews[len(report.DailyViews)-1].Count)
}
