package catalog

// itemContainerSelector is the fixed structural signature of one
// search-result entry. Unlike field lookup there is exactly one
// canonical way to find item boundaries.
const itemContainerSelector = `div[data-component-type="s-search-result"]`

const asinAttr = "data-asin"

// Selectors bundles the cascades for every logical field of a listing
// entry. Order within each cascade is significant: earlier patterns
// are preferred.
type Selectors struct {
	Title         Cascade
	Price         Cascade
	Rating        Cascade
	Image         Cascade
	ReviewCount   Cascade
	Availability  Cascade
	PrimeEligible Cascade
	FreeShipping  Cascade
	ResultCount   Cascade
	NextPage      Cascade
}

func DefaultSelectors() Selectors {
	return Selectors{
		Title: NewCascade("title",
			"h2.a-size-medium a span",
			".s-line-clamp-2 span",
			"h2 span",
			".a-link-normal .a-text-normal span",
			"h2 a span",
			"h2 a",
			".a-size-medium.a-color-base.a-text-normal",
		),
		Price: NewCascade("price",
			".a-price .a-offscreen",
			".a-price-whole",
			".puis-price-instructions-style .a-price",
			".a-price-range .a-offscreen",
			".a-price .a-price-whole",
			".a-price .a-price-fraction",
		),
		Rating: NewCascade("rating",
			".a-icon-star-mini .a-icon-alt",
			".a-icon-star .a-icon-alt",
			".a-popover-trigger .a-icon-alt",
			".a-icon-alt",
			".a-star-mini .a-icon-alt",
		),
		Image: NewCascade("image",
			".s-image",
			".s-product-image-container img",
			"img.s-image",
			".s-image-container img",
			"img[data-image-latency]",
		),
		ReviewCount: NewCascade("review_count",
			".s-link-style .a-size-base",
			".a-size-base.s-link-style",
			".a-size-base",
			".a-link-normal .a-size-base",
		),
		Availability: NewCascade("availability",
			".a-size-base.a-color-secondary",
			".a-size-base.a-color-price",
			".a-color-secondary",
		),
		PrimeEligible: NewCascade("prime_eligible",
			".a-icon-prime",
			".s-prime",
			"[data-prime]",
		),
		FreeShipping: NewCascade("free_shipping",
			`[aria-label*="FREE delivery"]`,
			`[aria-label*="FREE Shipping"]`,
		),
		ResultCount: NewCascade("result_count",
			`[data-component-type="s-result-info-bar"] .a-section span`,
			".s-breadcrumb .a-color-state",
			"h2.a-size-base span",
		),
		NextPage: NewCascade("next_page",
			"a.s-pagination-next",
			".s-pagination-next",
		),
	}
}

// detailSelectors covers the single-product page layout, which has one
// canonical spot for most fields plus a handful of fallbacks.
type detailSelectors struct {
	Title        Cascade
	Price        Cascade
	Rating       Cascade
	ReviewCount  Cascade
	Availability Cascade
	Brand        Cascade
	Category     Cascade
	Seller       Cascade
	Delivery     Cascade
}

func defaultDetailSelectors() detailSelectors {
	return detailSelectors{
		Title: NewCascade("title",
			"#productTitle",
		),
		Price: NewCascade("price",
			".a-price .a-offscreen",
			"span.a-price.a-text-price.a-size-medium.apexPriceToPay",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
			".a-price-whole",
		),
		Rating: NewCascade("rating",
			"span[data-hook=rating-out-of-text]",
			"#acrPopover .a-icon-alt",
			"span.a-icon-alt",
		),
		ReviewCount: NewCascade("review_count",
			"#acrCustomerReviewText",
		),
		Availability: NewCascade("availability",
			"#availability span",
			"#availability",
		),
		Brand: NewCascade("brand",
			"a#bylineInfo",
			"#bylineInfo",
			"span.a-size-base.po-break-word",
		),
		Category: NewCascade("category",
			"#wayfinding-breadcrumbs_feature_div .a-list-item:last-child",
			"#wayfinding-breadcrumbs_feature_div a",
		),
		Seller: NewCascade("seller",
			"#sellerProfileTriggerId",
			"#merchant-info a",
		),
		Delivery: NewCascade("delivery",
			"#mir-layout-DELIVERY_BLOCK",
			"#deliveryBlockMessage",
		),
	}
}
