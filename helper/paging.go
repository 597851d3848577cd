package helper

import (
	"net/url"
	"strconv"

	"agency-cms/models"

	"github.com/gin-gonic/gin"
)

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page int) string {
	r := c.Request
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := url.Values{}
	for k, v := range r.URL.Query() {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return scheme + "://" + r.Host + r.URL.Path + "?" + q.Encode()
}

// GeneratePaging fills the navigation links of p.
func (u *HTTPHelper) GeneratePaging(c *gin.Context, p models.Pagination) models.Pagination {
	links := &models.PageLinks{}
	page, totalPages := p.Page, p.TotalPage

	if page > 1 && totalPages >= page {
		links.Previous = u.GetPagingUrl(c, page-1)
		links.First = u.GetPagingUrl(c, 1)
	}
	if totalPages > page {
		links.Next = u.GetPagingUrl(c, page+1)
		links.Last = u.GetPagingUrl(c, totalPages)
	}

	p.Links = links
	return p
}
