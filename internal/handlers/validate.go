package handlers

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"quillpress/internal/models"
	"quillpress/internal/slug"
	"quillpress/internal/store"
)

// Validation limits, matching the column widths in the migrations.
const (
	maxNameLen        = 100
	maxTaxonomySlug   = 100
	maxTitleLen       = 300
	maxPostSlugLen    = 300
	maxContentLen     = 200_000
	maxExcerptLen     = 1_000
	maxMetaTitleLen   = 200
	maxMetaDescLen    = 500
	maxURLLen         = 2_000
	maxTagIDs         = 50
	maxAuthorNameLen  = 100
	maxEmailLen       = 255
	maxCommentLen     = 5_000
	maxSiteNameLen    = 200
	maxFormatLen      = 50
	maxLanguageLen    = 10
	maxDescriptionLen = 2_000
)

// fieldErrors maps a JSON field name to a human-readable message.
type fieldErrors map[string]string

func (e fieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// required checks a non-blank value no longer than max runes.
func (e fieldErrors) required(field, v string, max int) {
	if strings.TrimSpace(v) == "" {
		e.add(field, "is required")
		return
	}
	e.maxLen(field, v, max)
}

func (e fieldErrors) maxLen(field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		e.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func (e fieldErrors) optional(field string, v *string, max int) {
	if v != nil {
		e.maxLen(field, *v, max)
	}
}

func (e fieldErrors) absoluteURL(field, v string) {
	if !isAbsoluteURL(v) {
		e.add(field, "must be an absolute http(s) URL")
	}
	e.maxLen(field, v, maxURLLen)
}

func (e fieldErrors) email(field, v string) {
	if !isEmail(v) {
		e.add(field, "must be a valid email address")
	}
	e.maxLen(field, v, maxEmailLen)
}

// resolveSlug validates a given slug or derives one from source. The
// result is capped at max bytes.
func (e fieldErrors) resolveSlug(field, given, source string, max int) string {
	if given != "" {
		if !slug.IsValid(given) {
			e.add(field, "must contain only lowercase letters, digits and single hyphens")
		}
		e.maxLen(field, given, max)
		return given
	}
	s := slug.Generate(source)
	if len(s) > max {
		s = strings.TrimRight(s[:max], "-")
	}
	if s == "" && strings.TrimSpace(source) != "" {
		e.add(field, "cannot be derived, please provide one")
	}
	return s
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// isEmail accepts a bare RFC 5322 address, without display name.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validateCategoryInput(in *models.CategoryInput) fieldErrors {
	errs := fieldErrors{}
	in.Name = strings.TrimSpace(in.Name)
	errs.required("name", in.Name, maxNameLen)
	in.Slug = errs.resolveSlug("slug", in.Slug, in.Name, maxTaxonomySlug)
	errs.optional("description", in.Description, maxDescriptionLen)
	errs.optional("meta_title", in.MetaTitle, maxMetaTitleLen)
	errs.optional("meta_description", in.MetaDescription, maxMetaDescLen)
	return errs
}

func validateCategoryPatch(p *models.CategoryPatch) fieldErrors {
	errs := fieldErrors{}
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		errs.required("name", p.Name.Value, maxNameLen)
	}
	if p.Slug.Set {
		if p.Slug.Null || p.Slug.Value == "" {
			errs.add("slug", "cannot be empty")
		} else {
			errs.resolveSlug("slug", p.Slug.Value, "", maxTaxonomySlug)
		}
	}
	errs.optional("description", p.Description.Ptr(), maxDescriptionLen)
	errs.optional("meta_title", p.MetaTitle.Ptr(), maxMetaTitleLen)
	errs.optional("meta_description", p.MetaDescription.Ptr(), maxMetaDescLen)
	return errs
}

func validateTagInput(in *models.TagInput) fieldErrors {
	errs := fieldErrors{}
	in.Name = strings.TrimSpace(in.Name)
	errs.required("name", in.Name, maxNameLen)
	in.Slug = errs.resolveSlug("slug", in.Slug, in.Name, maxTaxonomySlug)
	errs.optional("description", in.Description, maxDescriptionLen)
	return errs
}

func validateTagPatch(p *models.TagPatch) fieldErrors {
	errs := fieldErrors{}
	if p.Name.Set {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		errs.required("name", p.Name.Value, maxNameLen)
	}
	if p.Slug.Set {
		if p.Slug.Null || p.Slug.Value == "" {
			errs.add("slug", "cannot be empty")
		} else {
			errs.resolveSlug("slug", p.Slug.Value, "", maxTaxonomySlug)
		}
	}
	errs.optional("description", p.Description.Ptr(), maxDescriptionLen)
	return errs
}

func validatePostInput(in *models.PostInput) fieldErrors {
	errs := fieldErrors{}
	in.Title = strings.TrimSpace(in.Title)
	errs.required("title", in.Title, maxTitleLen)
	in.Slug = errs.resolveSlug("slug", in.Slug, in.Title, maxPostSlugLen)
	errs.maxLen("content", in.Content, maxContentLen)
	errs.optional("excerpt", in.Excerpt, maxExcerptLen)
	errs.optional("meta_title", in.MetaTitle, maxMetaTitleLen)
	errs.optional("meta_description", in.MetaDescription, maxMetaDescLen)
	if in.CanonicalURL != nil && *in.CanonicalURL != "" {
		errs.absoluteURL("canonical_url", *in.CanonicalURL)
	}
	if in.Status != "" && !in.Status.Valid() {
		errs.add("status", "must be draft, published or archived")
	}
	if len(in.TagIDs) > maxTagIDs {
		errs.add("tag_ids", fmt.Sprintf("at most %d tags", maxTagIDs))
	}
	return errs
}

func validatePostPatch(p *models.PostPatch) fieldErrors {
	errs := fieldErrors{}
	if p.Title.Set {
		p.Title.Value = strings.TrimSpace(p.Title.Value)
		errs.required("title", p.Title.Value, maxTitleLen)
	}
	if p.Slug.Set {
		if p.Slug.Null || p.Slug.Value == "" {
			errs.add("slug", "cannot be empty")
		} else {
			errs.resolveSlug("slug", p.Slug.Value, "", maxPostSlugLen)
		}
	}
	if p.Content.Set {
		if p.Content.Null {
			errs.add("content", "cannot be null")
		}
		errs.maxLen("content", p.Content.Value, maxContentLen)
	}
	if p.Status.Set && (p.Status.Null || !p.Status.Value.Valid()) {
		errs.add("status", "must be draft, published or archived")
	}
	errs.optional("excerpt", p.Excerpt.Ptr(), maxExcerptLen)
	errs.optional("meta_title", p.MetaTitle.Ptr(), maxMetaTitleLen)
	errs.optional("meta_description", p.MetaDescription.Ptr(), maxMetaDescLen)
	if v := p.CanonicalURL.Ptr(); v != nil && *v != "" {
		errs.absoluteURL("canonical_url", *v)
	}
	if p.TagIDs.Set && len(p.TagIDs.Value) > maxTagIDs {
		errs.add("tag_ids", fmt.Sprintf("at most %d tags", maxTagIDs))
	}
	return errs
}

func validateCommentInput(in *models.CommentInput) fieldErrors {
	errs := fieldErrors{}
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.AuthorEmail = strings.TrimSpace(in.AuthorEmail)
	if in.PostID == uuid.Nil {
		errs.add("post_id", "is required")
	}
	errs.required("author_name", in.AuthorName, maxAuthorNameLen)
	if in.AuthorEmail == "" {
		errs.add("author_email", "is required")
	} else {
		errs.email("author_email", in.AuthorEmail)
	}
	if in.AuthorWebsite != nil {
		if w := strings.TrimSpace(*in.AuthorWebsite); w == "" {
			in.AuthorWebsite = nil
		} else {
			errs.absoluteURL("author_website", w)
			in.AuthorWebsite = &w
		}
	}
	errs.required("content", in.Content, maxCommentLen)
	return errs
}

// validateSearchParams checks the paging and sorting values a caller
// supplied. Absent values fall back to the store defaults.
func validateSearchParams(q url.Values, p store.SearchParams) fieldErrors {
	errs := fieldErrors{}
	if q.Get("page") != "" && p.Page < 1 {
		errs.add("page", "must be at least 1")
	}
	if q.Get("limit") != "" && (p.Limit < 1 || p.Limit > store.MaxLimit) {
		errs.add("limit", fmt.Sprintf("must be between 1 and %d", store.MaxLimit))
	}
	if p.SortBy != "" && !store.SortablePostColumn(p.SortBy) {
		errs.add("sort_by", "must be created_at, updated_at, published_at or title")
	}
	if p.SortOrder != "" && !store.ValidSortOrder(p.SortOrder) {
		errs.add("sort_order", "must be asc or desc")
	}
	if p.Status != "" && !p.Status.Valid() {
		errs.add("status", "must be draft, published or archived")
	}
	return errs
}

// ValidateSettings checks a settings patch field by field. Only present
// fields are checked.
func ValidateSettings(p models.SiteSettingsPatch) map[string]string {
	errs := fieldErrors{}
	if p.SiteName.Set {
		errs.required("site_name", p.SiteName.Value, maxSiteNameLen)
	}
	if p.SiteDescription.Set {
		errs.maxLen("site_description", p.SiteDescription.Value, maxDescriptionLen)
	}
	if p.SiteURL.Set {
		errs.absoluteURL("site_url", p.SiteURL.Value)
	}
	if p.AdminEmail.Set {
		errs.email("admin_email", p.AdminEmail.Value)
	}
	if p.PostsPerPage.Set && (p.PostsPerPage.Value < 1 || p.PostsPerPage.Value > 100) {
		errs.add("posts_per_page", "must be between 1 and 100")
	}
	if p.DefaultUserRole.Set && !p.DefaultUserRole.Value.Valid() {
		errs.add("default_user_role", "must be admin, editor or author")
	}
	if p.Timezone.Set {
		if _, err := time.LoadLocation(p.Timezone.Value); err != nil || p.Timezone.Value == "" {
			errs.add("timezone", "must be a valid IANA timezone")
		}
	}
	if p.DateFormat.Set {
		errs.required("date_format", p.DateFormat.Value, maxFormatLen)
	}
	if p.TimeFormat.Set {
		errs.required("time_format", p.TimeFormat.Value, maxFormatLen)
	}
	if p.Language.Set {
		errs.required("language", p.Language.Value, maxLanguageLen)
	}
	for field, f := range map[string]bool{
		"site_name": p.SiteName.Null, "site_description": p.SiteDescription.Null,
		"site_url": p.SiteURL.Null, "admin_email": p.AdminEmail.Null,
		"posts_per_page": p.PostsPerPage.Null, "allow_comments": p.AllowComments.Null,
		"allow_registration": p.AllowRegistration.Null, "default_user_role": p.DefaultUserRole.Null,
		"timezone": p.Timezone.Null, "date_format": p.DateFormat.Null,
		"time_format": p.TimeFormat.Null, "language": p.Language.Null,
	} {
		if f {
			errs[field] = "cannot be null"
		}
	}
	return errs
}
