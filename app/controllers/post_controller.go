package controllers

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/apperr"
	"yatube/app/authz"
	"yatube/app/blobstore"
	"yatube/app/cache"
	"yatube/app/feed"
	"yatube/app/identity"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

const invalidGroupMessage = "Select a valid choice. That choice is not one of the available choices."

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
}

// NewPostController creates a new PostController
func NewPostController(deps *Deps) *PostController {
	return &PostController{base{deps}}
}

// Index renders the home feed. The post listing is served from the
// listing cache and may lag behind writes by up to the cache TTL.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("page")
	key := cache.PageKey(cache.HomeKey, requestedPage(r))

	listing, err := pc.Cache.GetOrRender(r.Context(), key, pc.CacheTTL, func() ([]byte, error) {
		posts, err := pc.Posts.ListPosts()
		if err != nil {
			return nil, err
		}
		return pc.Views.Fragment("post_list", feed.Paginate(posts, pc.PageSize, requested))
	})
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	pc.render(w, r, http.StatusOK, "index", views.IndexView{Listing: template.HTML(listing)})
}

// GroupPosts renders one group's feed
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, posts, err := pc.Posts.GroupPosts(mux.Vars(r)["slug"])
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "group", views.GroupView{
		Group: group,
		Page:  feed.Paginate(posts, pc.PageSize, r.URL.Query().Get("page")),
	})
}

// Profile renders an author's posts and the viewer's relation to them
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, posts, err := pc.Posts.AuthorPosts(mux.Vars(r)["username"])
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	viewer, _ := identity.CurrentUser(r)
	relation, err := pc.Follows.Relation(viewer, author)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	followers, following, err := pc.Follows.Counts(author)
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	pc.render(w, r, http.StatusOK, "profile", views.ProfileView{
		Author:    author,
		Page:      feed.Paginate(posts, pc.PageSize, r.URL.Query().Get("page")),
		PostCount: len(posts),
		Followers: followers,
		Following: following,
		Relation:  relation,
	})
}

// Show renders a post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	post, err := pc.Posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	count, err := pc.Posts.CountByAuthor(post.AuthorID)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	comments, err := pc.Comments.ListComments(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	viewer, _ := identity.CurrentUser(r)
	pc.render(w, r, http.StatusOK, "post_detail", views.DetailView{
		Post:            post,
		AuthorPostCount: count,
		Comments:        comments,
		CanEdit:         authz.CanEditPost(viewer, post),
	})
}

// Create shows the new post form and handles its submission. The author
// is always the signed-in user.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.CurrentUser(r)
	form := views.PostFormView{Action: pc.Views.URL("/posts/create/")}

	if r.Method != http.MethodPost {
		pc.renderForm(w, r, form)
		return
	}

	in, _, err := parsePostForm(r)
	form.Text = r.FormValue("text")
	form.GroupID = groupValue(in.GroupID)
	if err == nil {
		_, err = pc.Posts.CreatePost(r.Context(), user, in)
	}
	if fields := apperr.FieldErrors(err); fields != nil {
		form.Errors = fields
		pc.renderForm(w, r, form)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	pc.redirect(w, r, "/profile/"+user.Username+"/")
}

// Edit shows and handles the edit form. Anyone but the author is sent
// back to the post without changes.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	user, _ := identity.CurrentUser(r)
	id, err := pathID(r, "id")
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	detail := "/posts/" + strconv.Itoa(id) + "/"

	post, err := pc.Posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if !authz.CanEditPost(user, post) {
		pc.redirect(w, r, detail)
		return
	}

	form := views.PostFormView{
		IsEdit:  true,
		Action:  pc.Views.URL(detail + "edit/"),
		Text:    post.Text,
		GroupID: groupValue(post.GroupID),
		Image:   post.Image,
	}
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, form)
		return
	}

	in, clearImage, err := parsePostForm(r)
	form.Text = r.FormValue("text")
	form.GroupID = groupValue(in.GroupID)
	if err == nil {
		_, err = pc.Posts.UpdatePost(r.Context(), user, id, in, clearImage)
	}
	if fields := apperr.FieldErrors(err); fields != nil {
		form.Errors = fields
		pc.renderForm(w, r, form)
		return
	}
	if errors.Is(err, apperr.ErrAuthorization) {
		pc.redirect(w, r, detail)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	pc.redirect(w, r, detail)
}

// renderForm shows the post form; invalid submissions are answered with
// 200 and the field messages.
func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, form views.PostFormView) {
	groups, err := pc.Posts.Groups()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	form.Groups = groups
	pc.render(w, r, http.StatusOK, "post_form", form)
}

// parsePostForm reads text, group, image and image-clear from a
// multipart or urlencoded body.
func parsePostForm(r *http.Request) (services.PostInput, bool, error) {
	var in services.PostInput
	err := r.ParseMultipartForm(blobstore.MaxImageBytes + 1<<20)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, false, apperr.NewValidation("__all__", "The submitted form could not be read.")
	}

	in.Text = r.FormValue("text")
	if g := strings.TrimSpace(r.FormValue("group")); g != "" {
		id, err := strconv.Atoi(g)
		if err != nil || id < 1 {
			return in, false, apperr.NewValidation("group", invalidGroupMessage)
		}
		in.GroupID = &id
	}

	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, blobstore.MaxImageBytes+1))
		if err != nil {
			return in, false, err
		}
		in.Image = data
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return in, false, err
	}

	return in, r.FormValue("image-clear") == "on", nil
}

func groupValue(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}

// currentUser is a convenience for handlers behind RequireLogin.
func currentUser(r *http.Request) *models.User {
	u, _ := identity.CurrentUser(r)
	return u
}
