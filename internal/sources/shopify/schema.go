package shopify

import "encoding/json"

// Storefront API payloads. Every field that the service may omit is a
// pointer so the mapper can tell "absent" from "zero".

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   *productsData  `json:"data"`
	Errors []graphQLError `json:"errors,omitempty"`
}

type graphQLError struct {
	Message    string          `json:"message"`
	Extensions json.RawMessage `json:"extensions,omitempty"`
}

type productsData struct {
	Products *productConnection `json:"products"`
}

type productConnection struct {
	PageInfo pageInfo      `json:"pageInfo"`
	Edges    []productEdge `json:"edges"`
}

type pageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

type productEdge struct {
	Cursor string         `json:"cursor"`
	Node   *ProductRecord `json:"node"`
}

// ProductRecord is one product as returned by the Storefront API.
type ProductRecord struct {
	ID               *string      `json:"id"`
	Handle           *string      `json:"handle"`
	Title            *string      `json:"title"`
	ProductType      *string      `json:"productType"`
	Vendor           *string      `json:"vendor"`
	Tags             []string     `json:"tags"`
	Description      *string      `json:"description"`
	DescriptionHTML  *string      `json:"descriptionHtml"`
	AvailableForSale *bool        `json:"availableForSale"`
	FeaturedImage    *ImageRecord `json:"featuredImage"`
	Images           *ImageList   `json:"images"`
	PriceRange       *PriceRange  `json:"priceRange"`
	Variants         *VariantList `json:"variants"`
}

type ImageRecord struct {
	URL     *string `json:"url"`
	AltText *string `json:"altText"`
}

type ImageList struct {
	Nodes []ImageRecord `json:"nodes"`
}

type MoneyRecord struct {
	Amount       *string `json:"amount"`
	CurrencyCode *string `json:"currencyCode"`
}

type PriceRange struct {
	MinVariantPrice *MoneyRecord `json:"minVariantPrice"`
}

type VariantRecord struct {
	AvailableForSale *bool        `json:"availableForSale"`
	Price            *MoneyRecord `json:"price"`
	CompareAtPrice   *MoneyRecord `json:"compareAtPrice"`
}

type VariantList struct {
	Nodes []VariantRecord `json:"nodes"`
}

// productsQuery fetches one page of products in storefront order.
const productsQuery = `query Products($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      cursor
      node {
        id
        handle
        title
        productType
        vendor
        tags
        description
        descriptionHtml
        availableForSale
        featuredImage { url altText }
        images(first: 1) { nodes { url altText } }
        priceRange { minVariantPrice { amount currencyCode } }
        variants(first: 10) {
          nodes {
            availableForSale
            price { amount currencyCode }
            compareAtPrice { amount currencyCode }
          }
        }
      }
    }
  }
}`
