package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gatherly/server/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventPath(id int64, parts ...string) string {
	p := fmt.Sprintf("/api/events/%d", id)
	for _, s := range parts {
		p += "/" + s
	}
	return p
}

// createEvent makes an event through the API and returns it.
func createEvent(t *testing.T, r *gin.Engine, token, name, privacy string) model.Event {
	t.Helper()
	body := map[string]interface{}{
		"name": name,
		"date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}
	if privacy != "" {
		body["privacy_level"] = privacy
	}
	w := postJSON(r, "/api/events", body, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var event model.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	return event
}

func feedIDs(t *testing.T, r *gin.Engine, path string, headers ...string) []int64 {
	t.Helper()
	w := doJSON(r, http.MethodGet, path, nil, headers...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Events []model.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ids := make([]int64, 0, len(resp.Events))
	for _, e := range resp.Events {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestCreateEvent_DefaultPrivacy(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "host")

	event := createEvent(t, r, token, "Picnic", "")
	assert.Equal(t, model.PrivacyPublic, event.PrivacyLevel)
}

func TestCreateEvent_RejectsBadPrivacy(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "host")

	w := postJSON(r, "/api/events", map[string]interface{}{
		"name":          "Picnic",
		"date":          time.Now().Format(time.RFC3339),
		"privacy_level": "SECRET",
	}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateEvent_Unauthorized(t *testing.T) {
	r, _, _ := newServer(t)
	w := postJSON(r, "/api/events", map[string]interface{}{
		"name": "Picnic",
		"date": time.Now().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetEvent_PrivateInvisibleToStranger(t *testing.T) {
	r, _, _ := newServer(t)
	_, hostToken := register(t, r, "host")
	_, strangerToken := register(t, r, "stranger")

	event := createEvent(t, r, hostToken, "Secret party", model.PrivacyPrivate)

	// The host sees it.
	w := doJSON(r, http.MethodGet, eventPath(event.ID), nil, bearer(hostToken)...)
	assert.Equal(t, http.StatusOK, w.Code)

	// A stranger gets 404, not 403: invisible events look missing.
	w = doJSON(r, http.MethodGet, eventPath(event.ID), nil, bearer(strangerToken)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEvent_InvalidID(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "host")

	w := doJSON(r, http.MethodGet, "/api/events/abc", nil, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEvent_HostOnly(t *testing.T) {
	r, _, _ := newServer(t)
	_, hostToken := register(t, r, "host")
	_, otherToken := register(t, r, "other")

	event := createEvent(t, r, hostToken, "Picnic", "")

	w := doJSON(r, http.MethodPut, eventPath(event.ID),
		map[string]string{"name": "Hijacked"}, bearer(otherToken)...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPut, eventPath(event.ID),
		map[string]string{"name": "Renamed"}, bearer(hostToken)...)
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Name)
}

func TestDeleteEvent_HostOnly(t *testing.T) {
	r, db, _ := newServer(t)
	_, hostToken := register(t, r, "host")
	_, otherToken := register(t, r, "other")

	event := createEvent(t, r, hostToken, "Picnic", "")

	w := doJSON(r, http.MethodDelete, eventPath(event.ID), nil, bearer(otherToken)...)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodDelete, eventPath(event.ID), nil, bearer(hostToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Event{}).Where("id = ?", event.ID).Count(&count)
	assert.Zero(t, count)
}

func TestFeed_FiltersByVisibility(t *testing.T) {
	r, db, _ := newServer(t)
	hostID, hostToken := register(t, r, "host")
	friendID, friendToken := register(t, r, "friend")
	_, strangerToken := register(t, r, "stranger")

	pub := createEvent(t, r, hostToken, "Public", model.PrivacyPublic)
	fo := createEvent(t, r, hostToken, "Friends only", model.PrivacyFriendsOnly)
	priv := createEvent(t, r, hostToken, "Private", model.PrivacyPrivate)

	low, high := model.FriendPair(hostID, friendID)
	require.NoError(t, db.Create(&model.Friendship{UserLowID: low, UserHighID: high}).Error)

	hostFeed := feedIDs(t, r, "/api/events", bearer(hostToken)...)
	assert.ElementsMatch(t, []int64{pub.ID, fo.ID, priv.ID}, hostFeed)

	friendFeed := feedIDs(t, r, "/api/events", bearer(friendToken)...)
	assert.ElementsMatch(t, []int64{pub.ID, fo.ID}, friendFeed)

	strangerFeed := feedIDs(t, r, "/api/events", bearer(strangerToken)...)
	assert.ElementsMatch(t, []int64{pub.ID}, strangerFeed)
}

func TestFeed_DateAscending(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "host")

	later := postJSON(r, "/api/events", map[string]interface{}{
		"name": "Later",
		"date": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, later.Code)
	sooner := postJSON(r, "/api/events", map[string]interface{}{
		"name": "Sooner",
		"date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, bearer(token)...)
	require.Equal(t, http.StatusCreated, sooner.Code)

	var laterEvent, soonerEvent model.Event
	require.NoError(t, json.Unmarshal(later.Body.Bytes(), &laterEvent))
	require.NoError(t, json.Unmarshal(sooner.Body.Bytes(), &soonerEvent))

	ids := feedIDs(t, r, "/api/events", bearer(token)...)
	require.Len(t, ids, 2)
	assert.Equal(t, soonerEvent.ID, ids[0])
	assert.Equal(t, laterEvent.ID, ids[1])
}

// mobileToken signs a feed bearer token the way the mobile backend does.
func mobileToken(t *testing.T, userID int64) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testSec.MobileSecret))
	require.NoError(t, err)
	return token
}

func TestMobileFeed_CappedAtTen(t *testing.T) {
	r, db, _ := newServer(t)
	userID, _ := register(t, r, "host")

	for i := 0; i < 12; i++ {
		e := &model.Event{
			Name:         fmt.Sprintf("event-%d", i),
			HostID:       userID,
			Date:         time.Now().Add(time.Duration(i) * time.Hour),
			PrivacyLevel: model.PrivacyPublic,
		}
		require.NoError(t, db.Create(e).Error)
	}

	ids := feedIDs(t, r, "/api/events/mobile", bearer(mobileToken(t, userID))...)
	assert.Len(t, ids, 10)
}

func TestMobileFeed_RejectsSessionSecret(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "host")

	// A web session token is not a mobile bearer token.
	w := doJSON(r, http.MethodGet, "/api/events/mobile", nil, bearer(token)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMobileFeed_NestedUserClaim(t *testing.T) {
	r, db, _ := newServer(t)
	userID, _ := register(t, r, "host")
	require.NoError(t, db.Create(&model.Event{
		Name: "Visible", HostID: userID,
		Date: time.Now().Add(time.Hour), PrivacyLevel: model.PrivacyPrivate,
	}).Error)

	claims := jwt.MapClaims{
		"user": map[string]interface{}{"id": userID},
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testSec.MobileSecret))
	require.NoError(t, err)

	ids := feedIDs(t, r, "/api/events/mobile", bearer(token)...)
	assert.Len(t, ids, 1)
}
