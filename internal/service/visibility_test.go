package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DiamondTaco/social-media-thing/internal/domain"
	"github.com/DiamondTaco/social-media-thing/internal/service"
)

type visibilityFixture struct {
	*testServices
	alice, bob, carol, dave *domain.User
}

// newVisibilityFixture creates a public account (alice), a private account
// (bob) followed by carol, and dave who follows nobody.
func newVisibilityFixture(t *testing.T) *visibilityFixture {
	t.Helper()
	s := newTestServices(t)
	ctx := context.Background()

	f := &visibilityFixture{
		testServices: s,
		alice:        s.signup(t, "alice"),
		bob:          s.signup(t, "bob"),
		carol:        s.signup(t, "carol"),
		dave:         s.signup(t, "dave"),
	}
	if err := s.accounts.SetPrivate(ctx, f.bob.ID, true); err != nil {
		t.Fatalf("SetPrivate: %v", err)
	}
	if err := s.accounts.Follow(ctx, f.carol.ID, "bob"); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	return f
}

func (f *visibilityFixture) post(t *testing.T, author *domain.User, content string, quote *domain.QuoteRef) *domain.Post {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), author.ID, content, quote)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	return p
}

func marshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func keys(t *testing.T, b []byte) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestResolve_PrivateCreatorHiddenFromNonFollower(t *testing.T) {
	f := newVisibilityFixture(t)
	p := f.post(t, f.bob, "secret thoughts", nil)

	view, err := f.visibility.Resolve(context.Background(), p.ID, f.dave.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := string(marshal(t, view)); got != `{"private_acc":true,"can_view":false}` {
		t.Fatalf("unexpected redacted view: %s", got)
	}

	anon, err := f.visibility.Resolve(context.Background(), p.ID, 0, false)
	if err != nil {
		t.Fatalf("Resolve anonymous: %v", err)
	}
	if anon.CanView {
		t.Fatal("anonymous viewer must not see private content")
	}
}

func TestResolve_PrivateCreatorVisibleToFollowerAndSelf(t *testing.T) {
	f := newVisibilityFixture(t)
	p := f.post(t, f.bob, "for friends", nil)

	for _, viewer := range []*domain.User{f.carol, f.bob} {
		view, err := f.visibility.Resolve(context.Background(), p.ID, viewer.ID, false)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !view.CanView || view.PostDetails == nil {
			t.Fatalf("%s should see the post", viewer.Username)
		}
		if !view.PrivateAcc {
			t.Fatal("expected private_acc to reflect the creator")
		}
		if view.Content != "for friends" {
			t.Fatalf("unexpected content %q", view.Content)
		}
	}
}

func TestResolve_FullView(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "hello  world\t", nil)

	if err := f.posts.Like(ctx, domain.QuoteRef{Kind: domain.QuotePost, ID: p.ID}, f.carol.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if _, err := f.posts.CreateComment(ctx, f.dave.ID, p.ID, false, "nice"); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	f.post(t, f.dave, "look at this", &domain.QuoteRef{Kind: domain.QuotePost, ID: p.ID})

	view, err := f.visibility.Resolve(ctx, p.ID, f.carol.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := &service.PostView{
		PostDetails: &service.PostDetails{
			PostID:          p.ID,
			CreatorID:       f.alice.ID,
			DisplayName:     "alice",
			CreatorUsername: "alice",
			Content:         "hello world",
			Timestamp:       p.Timestamp,
			Liked:           true,
			Likes:           1,
			Comments:        1,
			Quotes:          1,
		},
		PrivateAcc: false,
		CanView:    true,
	}
	if diff := cmp.Diff(want, view); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}

	m := keys(t, marshal(t, view))
	if _, ok := m["quote"]; ok {
		t.Fatal("a post without a quote must not carry a quote key")
	}
}

func TestResolve_PublicPostQuotingPrivatePost(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	secret := f.post(t, f.bob, "do not leak", nil)
	// carol follows bob, so she may quote him.
	outer := f.post(t, f.carol, "quoting bob", &domain.QuoteRef{Kind: domain.QuotePost, ID: secret.ID})

	view, err := f.visibility.Resolve(ctx, outer.ID, f.dave.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !view.CanView || view.Content != "quoting bob" {
		t.Fatal("outer post should be fully visible")
	}
	if view.Quote == nil {
		t.Fatal("expected a quote view")
	}
	if view.Quote.CanView || view.Quote.QuoteDetails != nil {
		t.Fatal("quoted private post must be redacted")
	}

	raw := marshal(t, view)
	if bytes.Contains(raw, []byte("do not leak")) {
		t.Fatalf("quoted content leaked: %s", raw)
	}
	quote := keys(t, keys(t, raw)["quote"])
	if len(quote) != 2 {
		t.Fatalf("redacted quote should only have two keys, got %s", keys(t, raw)["quote"])
	}

	// A follower of bob sees the quote.
	view, err = f.visibility.Resolve(ctx, outer.ID, f.carol.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !view.Quote.CanView || view.Quote.Content != "do not leak" {
		t.Fatal("follower should see the quoted post")
	}
}

func TestResolve_QuoteOfQuoteIsOneLevelDeep(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	root := f.post(t, f.alice, "root", nil)
	middle := f.post(t, f.alice, "middle", &domain.QuoteRef{Kind: domain.QuotePost, ID: root.ID})
	top := f.post(t, f.dave, "top", &domain.QuoteRef{Kind: domain.QuotePost, ID: middle.ID})

	view, err := f.visibility.Resolve(ctx, top.ID, f.dave.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := &service.QuoteView{
		QuoteDetails: &service.QuoteDetails{
			PostDetails: service.PostDetails{
				PostID:          middle.ID,
				CreatorID:       f.alice.ID,
				DisplayName:     "alice",
				CreatorUsername: "alice",
				Content:         "middle",
				Timestamp:       middle.Timestamp,
				Quotes:          1,
			},
			Comment:  false,
			HasQuote: true,
		},
		CanView: true,
	}
	if diff := cmp.Diff(want, view.Quote); diff != "" {
		t.Fatalf("quote mismatch (-want +got):\n%s", diff)
	}

	quote := keys(t, keys(t, marshal(t, view))["quote"])
	if _, ok := quote["quote"]; ok {
		t.Fatal("quotes must not nest further")
	}
}

func TestResolve_QuotedComment(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "original", nil)
	c, err := f.posts.CreateComment(ctx, f.alice.ID, p.ID, false, "a reply")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	q := f.post(t, f.dave, "quoting a reply", &domain.QuoteRef{Kind: domain.QuoteComment, ID: c.ID})

	view, err := f.visibility.Resolve(ctx, q.ID, f.dave.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !view.Quote.CanView || !view.Quote.Comment || view.Quote.HasQuote {
		t.Fatalf("unexpected quote flags: %+v", view.Quote.QuoteDetails)
	}
	if view.Quote.PostID != c.ID || view.Quote.Quotes != 1 {
		t.Fatalf("expected comment %d with one quote, got %+v", c.ID, view.Quote.QuoteDetails)
	}
}

func TestResolve_CommentHasNoQuoteResolution(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	p := f.post(t, f.alice, "post", nil)
	c, err := f.posts.CreateComment(ctx, f.dave.ID, p.ID, false, "comment")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	view, err := f.visibility.Resolve(ctx, c.ID, f.alice.ID, true)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if view.Content != "comment" || view.Quote != nil {
		t.Fatalf("unexpected comment view: %+v", view.PostDetails)
	}
}

func TestResolve_DeletedQuote(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	// Bypass the service, which refuses to quote missing posts.
	p := &domain.Post{
		Entry: domain.Entry{CreatorID: f.alice.ID, Content: "dangling", Timestamp: 1},
		Quote: &domain.QuoteRef{Kind: domain.QuotePost, ID: 9999},
	}
	if err := f.db.Posts().Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	view, err := f.visibility.Resolve(ctx, p.ID, f.dave.ID, false)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := string(keys(t, marshal(t, view))["quote"]); got != `{"private_acc":false,"can_view":false}` {
		t.Fatalf("unexpected deleted quote view: %s", got)
	}
}

func TestResolve_NotFound(t *testing.T) {
	f := newVisibilityFixture(t)

	_, err := f.visibility.Resolve(context.Background(), 424242, f.dave.ID, false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	secret := f.post(t, f.bob, "hidden", nil)
	outer := f.post(t, f.bob, "also hidden but quoted", &domain.QuoteRef{Kind: domain.QuotePost, ID: secret.ID})
	public := f.post(t, f.carol, "public", &domain.QuoteRef{Kind: domain.QuotePost, ID: outer.ID})

	for _, viewer := range []int64{0, f.carol.ID, f.dave.ID} {
		first, err := f.visibility.Resolve(ctx, public.ID, viewer, false)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		second, err := f.visibility.Resolve(ctx, public.ID, viewer, false)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if !bytes.Equal(marshal(t, first), marshal(t, second)) {
			t.Fatalf("views differ for viewer %d", viewer)
		}
	}

	after, _ := f.db.Posts().GetByID(ctx, public.ID)
	if len(after.Likes) != 0 || len(after.Comments) != 0 {
		t.Fatal("resolving must not mutate the post")
	}
}

func TestResolve_StoreFailure(t *testing.T) {
	f := newVisibilityFixture(t)
	ctx := context.Background()
	quoted := f.post(t, f.alice, "quoted", nil)
	outer := f.post(t, f.dave, "outer", &domain.QuoteRef{Kind: domain.QuotePost, ID: quoted.ID})

	t.Run("creator lookup", func(t *testing.T) {
		r := service.NewVisibilityResolver(failingUsers{}, f.db.Posts(), f.db.Comments())

		view, err := r.Resolve(ctx, outer.ID, f.dave.ID, false)
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("expected store error, got %v", err)
		}
		if errors.Is(err, domain.ErrNotFound) || view != nil {
			t.Fatalf("a store failure must not read as a missing or visible post: %+v, %v", view, err)
		}
	})

	t.Run("quote lookup", func(t *testing.T) {
		posts := failingPosts{PostRepository: f.db.Posts(), failID: quoted.ID}
		r := service.NewVisibilityResolver(f.db.Users(), posts, f.db.Comments())

		view, err := r.Resolve(ctx, outer.ID, f.dave.ID, false)
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("expected store error, got %v", err)
		}
		if view != nil {
			t.Fatalf("a failed quote lookup must not render as a deleted quote: %+v", view.Quote)
		}
	})
}
