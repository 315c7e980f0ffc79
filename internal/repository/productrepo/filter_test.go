package productrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shoplist/internal/domain"
)

func TestBuildFilter_Empty(t *testing.T) {
	where, args := buildFilter(domain.ProductFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildFilter_QueryMatchesNameOrDescription(t *testing.T) {
	where, args := buildFilter(domain.ProductFilter{Query: "desk"})
	assert.Equal(t, " WHERE (name ILIKE $1 OR description ILIKE $1)", where)
	assert.Equal(t, []interface{}{"%desk%"}, args)
}

func TestBuildFilter_ShopOnly(t *testing.T) {
	where, args := buildFilter(domain.ProductFilter{ShopID: 2})
	assert.Equal(t, " WHERE shop_id = $1", where)
	assert.Equal(t, []interface{}{int64(2)}, args)
}

func TestBuildFilter_QueryAndShop(t *testing.T) {
	where, args := buildFilter(domain.ProductFilter{Query: "desk", ShopID: 2})
	assert.Equal(t, " WHERE (name ILIKE $1 OR description ILIKE $1) AND shop_id = $2", where)
	assert.Equal(t, []interface{}{"%desk%", int64(2)}, args)
}
