package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gatherly/server/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendRequest(t *testing.T, r *gin.Engine, token, username string) model.FriendRequest {
	t.Helper()
	w := postJSON(r, "/api/friends/requests",
		map[string]string{"username": username}, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var req model.FriendRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))
	return req
}

func TestSendFriendRequest(t *testing.T) {
	r, _, _ := newServer(t)
	aliceID, aliceToken := register(t, r, "alice")
	bobID, _ := register(t, r, "bob")

	req := sendRequest(t, r, aliceToken, "bob")
	assert.Equal(t, aliceID, req.SenderID)
	assert.Equal(t, bobID, req.ReceiverID)
}

func TestSendFriendRequest_Self(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "alice")

	w := postJSON(r, "/api/friends/requests",
		map[string]string{"username": "alice"}, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendFriendRequest_Duplicate(t *testing.T) {
	r, _, _ := newServer(t)
	_, aliceToken := register(t, r, "alice")
	register(t, r, "bob")

	sendRequest(t, r, aliceToken, "bob")
	w := postJSON(r, "/api/friends/requests",
		map[string]string{"username": "bob"}, bearer(aliceToken)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendFriendRequest_UnknownUser(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "alice")

	w := postJSON(r, "/api/friends/requests",
		map[string]string{"username": "ghost"}, bearer(token)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFriendRequests(t *testing.T) {
	r, _, _ := newServer(t)
	_, aliceToken := register(t, r, "alice")
	_, bobToken := register(t, r, "bob")
	register(t, r, "carol")

	sendRequest(t, r, bobToken, "alice")   // incoming for alice
	sendRequest(t, r, aliceToken, "carol") // outgoing for alice

	w := doJSON(r, http.MethodGet, "/api/friends/requests", nil, bearer(aliceToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Incoming []model.FriendRequest `json:"incoming"`
		Outgoing []model.FriendRequest `json:"outgoing"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Incoming, 1)
	require.Len(t, resp.Outgoing, 1)
	require.NotNil(t, resp.Incoming[0].Sender)
	assert.Equal(t, "bob", resp.Incoming[0].Sender.Username)
	require.NotNil(t, resp.Outgoing[0].Receiver)
	assert.Equal(t, "carol", resp.Outgoing[0].Receiver.Username)
}

func TestAcceptFriendRequest(t *testing.T) {
	r, db, _ := newServer(t)
	aliceID, aliceToken := register(t, r, "alice")
	bobID, bobToken := register(t, r, "bob")

	req := sendRequest(t, r, bobToken, "alice")

	w := postJSON(r, fmt.Sprintf("/api/friends/requests/%d/accept", req.ID), nil,
		bearer(aliceToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	low, high := model.FriendPair(aliceID, bobID)
	var count int64
	db.Model(&model.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ?", low, high).Count(&count)
	assert.Equal(t, int64(1), count)

	// The request is consumed.
	db.Model(&model.FriendRequest{}).Count(&count)
	assert.Zero(t, count)
}

func TestAcceptFriendRequest_SenderCannotAccept(t *testing.T) {
	r, _, _ := newServer(t)
	register(t, r, "alice")
	_, bobToken := register(t, r, "bob")

	req := sendRequest(t, r, bobToken, "alice")

	w := postJSON(r, fmt.Sprintf("/api/friends/requests/%d/accept", req.ID), nil,
		bearer(bobToken)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeclineFriendRequest(t *testing.T) {
	r, db, _ := newServer(t)
	_, aliceToken := register(t, r, "alice")
	_, bobToken := register(t, r, "bob")

	req := sendRequest(t, r, bobToken, "alice")

	w := postJSON(r, fmt.Sprintf("/api/friends/requests/%d/decline", req.ID), nil,
		bearer(aliceToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Friendship{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.FriendRequest{}).Count(&count)
	assert.Zero(t, count)
}

func TestListFriends_AfterAccept(t *testing.T) {
	r, _, _ := newServer(t)
	_, aliceToken := register(t, r, "alice")
	_, bobToken := register(t, r, "bob")

	req := sendRequest(t, r, bobToken, "alice")
	w := postJSON(r, fmt.Sprintf("/api/friends/requests/%d/accept", req.ID), nil,
		bearer(aliceToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	// Both sides see each other.
	for token, friend := range map[string]string{
		aliceToken: "bob",
		bobToken:   "alice",
	} {
		w = doJSON(r, http.MethodGet, "/api/friends", nil, bearer(token)...)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Friends []model.User `json:"friends"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Friends, 1)
		assert.Equal(t, friend, resp.Friends[0].Username)
	}
}

func TestRemoveFriend(t *testing.T) {
	r, db, _ := newServer(t)
	aliceID, aliceToken := register(t, r, "alice")
	bobID, _ := register(t, r, "bob")

	low, high := model.FriendPair(aliceID, bobID)
	require.NoError(t, db.Create(&model.Friendship{UserLowID: low, UserHighID: high}).Error)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/friends/%d", bobID), nil,
		bearer(aliceToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Friendship{}).Count(&count)
	assert.Zero(t, count)
}

func TestRemoveFriend_NotFriends(t *testing.T) {
	r, _, _ := newServer(t)
	_, aliceToken := register(t, r, "alice")
	bobID, _ := register(t, r, "bob")

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/friends/%d", bobID), nil,
		bearer(aliceToken)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFriend_InvalidID(t *testing.T) {
	r, _, _ := newServer(t)
	_, token := register(t, r, "alice")

	w := doJSON(r, http.MethodDelete, "/api/friends/abc", nil, bearer(token)...)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
