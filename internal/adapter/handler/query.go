package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/rl1809/storefront/internal/core/domain"
)

func int64Param(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func intQuery(r *http.Request, name string) (int, error) {
	v, err := int64Param(r.URL.Query().Get(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return int(v), nil
}

func int64Query(r *http.Request, name string) (int64, error) {
	v, err := int64Param(r.URL.Query().Get(name))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func pageParams(r *http.Request) (domain.Page, error) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		return domain.Page{}, err
	}
	page, err := intQuery(r, "page")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Limit: limit, Number: page}, nil
}

func productQuery(r *http.Request) (domain.ProductQuery, error) {
	p, err := pageParams(r)
	if err != nil {
		return domain.ProductQuery{}, err
	}
	minPrice, err := int64Query(r, "minPrice")
	if err != nil {
		return domain.ProductQuery{}, err
	}
	maxPrice, err := int64Query(r, "maxPrice")
	if err != nil {
		return domain.ProductQuery{}, err
	}

	q := r.URL.Query()
	return domain.ProductQuery{
		SortBy:   q.Get("sortBy"),
		OrderBy:  q.Get("orderBy"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Page:     p,
	}, nil
}

func orderQuery(r *http.Request) (domain.OrderQuery, error) {
	p, err := pageParams(r)
	if err != nil {
		return domain.OrderQuery{}, err
	}
	minTotal, err := int64Query(r, "minTotal")
	if err != nil {
		return domain.OrderQuery{}, err
	}
	maxTotal, err := int64Query(r, "maxTotal")
	if err != nil {
		return domain.OrderQuery{}, err
	}

	q := r.URL.Query()
	return domain.OrderQuery{
		SortBy:   q.Get("sortBy"),
		OrderBy:  q.Get("orderBy"),
		MinTotal: minTotal,
		MaxTotal: maxTotal,
		Page:     p,
	}, nil
}
