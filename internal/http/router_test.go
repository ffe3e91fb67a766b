package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opensangha/memberhub/internal/service"
	"github.com/opensangha/memberhub/internal/store/sqlite"
	"github.com/opensangha/memberhub/pkg/blob"
	"github.com/opensangha/memberhub/pkg/jwtx"
)

const testIssuer = "memberhub-test"

// newTestServer wires a full router against an in-memory store and returns
// a running test server. Each test gets its own server so rate limiter state
// never bleeds between tests.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)

	blobs, err := blob.NewFSStore(t.TempDir(), []byte("blob-signing-key-for-router-tests"))
	require.NoError(t, err)

	r := NewRouter(codec, "test", st, blobs, slog.New(slog.DiscardHandler))
	r.AuthService = &service.AuthService{
		Store:         st,
		Codec:         codec,
		Issuer:        testIssuer,
		AccessTTL:     jwtx.DefaultAccessTokenTTL,
		RefreshLeeway: jwtx.DefaultRefreshLeeway,
	}
	r.InviteService = &service.InviteService{Store: st}
	r.UserService = &service.UserService{Store: st}
	r.MFAService = &service.MFAService{Store: st, Issuer: testIssuer}
	r.UnitService = &service.UnitService{Store: st}
	r.MentorshipService = &service.MentorshipService{Store: st}
	r.UploadService = &service.UploadService{Store: st, Blobs: blobs, MaxBytes: 1 << 20}
	r.ApplyRoutes()

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

// doJSON performs a request with an optional JSON body and bearer token,
// decodes the response into out (if non-nil) and returns the status code.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp.StatusCode
}

// registerMember signs up a member through the public endpoint and returns
// the issued token response.
func registerMember(t *testing.T, ts *httptest.Server, email, name string) TokenResponse {
	t.Helper()

	var tok TokenResponse
	status := doJSON(t, ts, http.MethodPost, "/v1/auth/register", "", RegisterRequest{
		Email:       email,
		Password:    "secret-pass",
		WorldlyName: name,
	}, &tok)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, tok.Token)
	require.NotNil(t, tok.User)
	return tok
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	tok := registerMember(t, ts, "ananda@example.org", "Ananda")
	require.Equal(t, "ananda@example.org", tok.User.Email)
	require.Equal(t, "Ananda", tok.User.DisplayName)

	// Duplicate registration is rejected.
	var errResp struct {
		Error string `json:"error"`
	}
	status := doJSON(t, ts, http.MethodPost, "/v1/auth/register", "", RegisterRequest{
		Email:    "Ananda@Example.org",
		Password: "another-pass",
	}, &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "email_taken", errResp.Error)

	// Wrong password and unknown account look identical.
	status = doJSON(t, ts, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email:    "ananda@example.org",
		Password: "wrong-pass",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	status = doJSON(t, ts, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email:    "nobody@example.org",
		Password: "wrong-pass",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	var login TokenResponse
	status = doJSON(t, ts, http.MethodPost, "/v1/auth/login", "", LoginRequest{
		Email:    "ANANDA@example.org",
		Password: "secret-pass",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)

	// The issued token opens protected routes.
	var me UserResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/me", login.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, tok.User.ID, me.ID)
}

func TestBearerAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/v1/me", "/v1/users", "/v1/units", "/v1/mentorships", "/v1/uploads"} {
		status := doJSON(t, ts, http.MethodGet, path, "", nil, nil)
		require.Equal(t, http.StatusUnauthorized, status, "missing token on %s", path)

		status = doJSON(t, ts, http.MethodGet, path, "not-a-jwt", nil, nil)
		require.Equal(t, http.StatusUnauthorized, status, "garbage token on %s", path)
	}
}

func TestValidateAndRefresh(t *testing.T) {
	ts := newTestServer(t)
	tok := registerMember(t, ts, "vimala@example.org", "Vimala")

	var valid ValidateResponse
	status := doJSON(t, ts, http.MethodPost, "/v1/auth/validate", "", TokenRequest{Token: tok.Token}, &valid)
	require.Equal(t, http.StatusOK, status)
	require.True(t, valid.Valid)

	status = doJSON(t, ts, http.MethodPost, "/v1/auth/validate", "", TokenRequest{Token: "not-a-jwt"}, &valid)
	require.Equal(t, http.StatusOK, status)
	require.False(t, valid.Valid)

	var refreshed TokenResponse
	status = doJSON(t, ts, http.MethodPost, "/v1/auth/refresh", "", TokenRequest{Token: tok.Token}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, refreshed.Token)

	status = doJSON(t, ts, http.MethodPost, "/v1/auth/refresh", "", TokenRequest{Token: "not-a-jwt"}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

// TestInvitationFlow exercises the full magic-link lifecycle over HTTP:
// create, idempotent re-create, public landing info, completion with
// auto-login, and rejection of the spent link.
func TestInvitationFlow(t *testing.T) {
	ts := newTestServer(t)
	inviter := registerMember(t, ts, "inviter@example.org", "Inviter")

	// Step 1: Mint an invitation.
	var inv InvitationResponse
	status := doJSON(t, ts, http.MethodPost, "/v1/invitations", inviter.Token,
		CreateInvitationRequest{Email: "newcomer@example.org"}, &inv)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, inv.Token)
	require.Equal(t, "newcomer@example.org", inv.Email)

	// Step 2: A repeat for the same address returns the same link, 200 not 201.
	var again InvitationResponse
	status = doJSON(t, ts, http.MethodPost, "/v1/invitations", inviter.Token,
		CreateInvitationRequest{Email: "Newcomer@Example.org"}, &again)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, inv.Token, again.Token)

	// Step 3: The landing page is public and names the inviter.
	var info InvitationInfoResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/invitations/"+inv.Token, "", nil, &info)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "newcomer@example.org", info.Email)
	require.Equal(t, "Inviter", info.InvitedBy.DisplayName)

	status = doJSON(t, ts, http.MethodGet, "/v1/invitations/no-such-token", "", nil, nil)
	require.Equal(t, http.StatusNotFound, status)

	// Step 4: Completion creates the account and signs the newcomer in.
	var joined TokenResponse
	status = doJSON(t, ts, http.MethodPost, "/v1/invitations/complete", "", CompleteInvitationRequest{
		Token:         inv.Token,
		Password:      "newcomer-pass",
		SpiritualName: "Dharmapala",
	}, &joined)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, joined.Token)
	require.Equal(t, "newcomer@example.org", joined.User.Email)
	require.Equal(t, "Dharmapala", joined.User.DisplayName)

	var me UserResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/me", joined.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, joined.User.ID, me.ID)

	// Step 5: The spent link is gone for good.
	var errResp struct {
		Error string `json:"error"`
	}
	status = doJSON(t, ts, http.MethodGet, "/v1/invitations/"+inv.Token, "", nil, &errResp)
	require.Equal(t, http.StatusGone, status)
	require.Equal(t, "already_used", errResp.Error)

	status = doJSON(t, ts, http.MethodPost, "/v1/invitations/complete", "", CompleteInvitationRequest{
		Token:    inv.Token,
		Password: "someone-else",
	}, nil)
	require.Equal(t, http.StatusGone, status)

	// Step 6: Inviting the now-registered address is refused.
	status = doJSON(t, ts, http.MethodPost, "/v1/invitations", inviter.Token,
		CreateInvitationRequest{Email: "newcomer@example.org"}, &errResp)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "email_taken", errResp.Error)
}

func TestUnitAndMentorshipRoutes(t *testing.T) {
	ts := newTestServer(t)
	leader := registerMember(t, ts, "leader@example.org", "Leader")
	member := registerMember(t, ts, "member@example.org", "Member")

	var unit UnitResponse
	status := doJSON(t, ts, http.MethodPost, "/v1/units", leader.Token,
		CreateUnitRequest{Name: "Morning Sitting", Description: "Daily 6am group"}, &unit)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, leader.User.ID, unit.LeaderID)

	status = doJSON(t, ts, http.MethodPost, "/v1/units", leader.Token,
		CreateUnitRequest{Name: "Morning Sitting"}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, ts, http.MethodPost, "/v1/units/"+unit.ID+"/join", member.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	var detail UnitDetailResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/units/"+unit.ID, member.Token, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, detail.Members, 2)

	status = doJSON(t, ts, http.MethodDelete, "/v1/units/"+unit.ID+"/members/me", member.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	// Leaving twice reports the caller was not a member.
	status = doJSON(t, ts, http.MethodDelete, "/v1/units/"+unit.ID+"/members/me", member.Token, nil, nil)
	require.Equal(t, http.StatusNotFound, status)

	var m MentorshipResponse
	status = doJSON(t, ts, http.MethodPost, "/v1/mentorships", leader.Token,
		StartMentorshipRequest{MenteeID: member.User.ID}, &m)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, leader.User.ID, m.MentorID)
	require.Equal(t, member.User.ID, m.MenteeID)

	// Second open pairing for the same mentee is refused.
	status = doJSON(t, ts, http.MethodPost, "/v1/mentorships", leader.Token,
		StartMentorshipRequest{MenteeID: member.User.ID}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	var list []MentorshipResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/mentorships", member.Token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)

	status = doJSON(t, ts, http.MethodPost, "/v1/mentorships/"+m.ID+"/end", member.Token, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
}

func TestProfileUpdateRoute(t *testing.T) {
	ts := newTestServer(t)
	tok := registerMember(t, ts, "mitra@example.org", "Mitra")

	var updated UserResponse
	status := doJSON(t, ts, http.MethodPatch, "/v1/me", tok.Token, UpdateProfileRequest{
		WorldlyName:   "Mitra",
		PreferredName: "Mits",
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Mits", updated.DisplayName)

	var fetched UserResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/users/"+tok.User.ID, tok.Token, nil, &fetched)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Mits", fetched.DisplayName)

	status = doJSON(t, ts, http.MethodGet, "/v1/users/no-such-id", tok.Token, nil, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestMFARoutes(t *testing.T) {
	ts := newTestServer(t)
	tok := registerMember(t, ts, "guard@example.org", "Guard")

	var enroll MFAEnrollResponse
	status := doJSON(t, ts, http.MethodPost, "/v1/mfa/enroll", tok.Token, nil, &enroll)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, enroll.Secret)
	require.Contains(t, enroll.URL, "otpauth://")

	// A wrong code never activates.
	status = doJSON(t, ts, http.MethodPost, "/v1/mfa/activate", tok.Token, MFACodeRequest{Code: "000000"}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	var me UserResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/me", tok.Token, nil, &me)
	require.Equal(t, http.StatusOK, status)
	require.False(t, me.MFAEnabled)
}

func TestUploadAndSignedDownload(t *testing.T) {
	ts := newTestServer(t)
	tok := registerMember(t, ts, "scribe@example.org", "Scribe")

	// Multipart upload.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("retreat notes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/uploads", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tok.Token)

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", raw)

	var up UploadResponse
	require.NoError(t, json.Unmarshal(raw, &up))
	require.Equal(t, "notes.txt", up.FileName)
	require.Equal(t, int64(len("retreat notes")), up.SizeBytes)

	var list []UploadResponse
	status := doJSON(t, ts, http.MethodGet, "/v1/uploads", tok.Token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)

	// Signed link works without a bearer token.
	var link UploadLinkResponse
	status = doJSON(t, ts, http.MethodGet, "/v1/uploads/"+up.ID+"/url", tok.Token, nil, &link)
	require.Equal(t, http.StatusOK, status)
	require.True(t, strings.HasPrefix(link.URL, "/v1/files/"), "got %s", link.URL)

	dl, err := ts.Client().Get(ts.URL + link.URL)
	require.NoError(t, err)
	content, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	require.Equal(t, "retreat notes", string(content))

	// A tampered signature is refused before anything is read from disk.
	u, err := url.Parse(ts.URL + link.URL)
	require.NoError(t, err)
	q := u.Query()
	q.Set("sig", "deadbeef")
	u.RawQuery = q.Encode()

	dl, err = ts.Client().Get(u.String())
	require.NoError(t, err)
	dl.Body.Close()
	require.Equal(t, http.StatusForbidden, dl.StatusCode)

	status = doJSON(t, ts, http.MethodGet, "/v1/uploads/no-such-id/url", tok.Token, nil, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	var health HealthResponse
	status := doJSON(t, ts, http.MethodGet, "/livez", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)

	status = doJSON(t, ts, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
}
