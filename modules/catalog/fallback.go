package catalog

import "magic-mirror-server/modules/common/domain"

// Static catalogs used when the remote table is missing, empty or unreachable.
// The fallback must be silent to the end user.

var hairstyleFallback = []Item{
	{
		ID:          "1",
		Name:        "Platinum Pixie",
		Category:    "Short",
		Description: "a modern, edgy platinum blonde pixie cut with textured layers",
		Image:       "https://images.unsplash.com/photo-1595476108010-b4d1f102b1b1?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "2",
		Name:        "Long Beach Waves",
		Category:    "Long",
		Description: "long, flowing brunette hair with loose, sun-kissed beach waves",
		Image:       "https://images.unsplash.com/photo-1519699047748-de8e457a634e?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "3",
		Name:        "Neon Cyber Bob",
		Category:    "Creative",
		Description: "a sharp, asymmetrical bob cut dyed in vibrant neon pink and blue cyberpunk style",
		Image:       "https://images.unsplash.com/photo-1582095133179-bfd08d3d95b5?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "4",
		Name:        "Afro Puff",
		Category:    "Natural",
		Description: "voluminous natural afro hair styled in a high puff",
		Image:       "https://images.unsplash.com/photo-1605497788044-5a32c7078486?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "5",
		Name:        "Sleek High Pony",
		Category:    "Updo",
		Description: "a very long, sleek, high ponytail extension, Ariana Grande style",
		Image:       "https://images.unsplash.com/photo-1517841905240-472988babdf9?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "6",
		Name:        "Redhead Curtain Bangs",
		Category:    "Medium",
		Description: "copper red hair, shoulder length with trendy curtain bangs",
		Image:       "https://images.unsplash.com/photo-1523264626871-36e6504a7541?auto=format&fit=crop&w=200&q=80",
	},
}

var clothingFallback = []Item{
	{
		ID:          "1",
		Name:        "Classic Navy Suit",
		Category:    "Formal",
		Description: "a tailored navy two-piece suit with a crisp white shirt",
		Image:       "https://images.unsplash.com/photo-1507679799987-c73779587ccf?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "2",
		Name:        "Denim Street Look",
		Category:    "Casual",
		Description: "an oversized light-wash denim jacket over a plain white tee and black jeans",
		Image:       "https://images.unsplash.com/photo-1523205771623-e0faa4d2813d?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "3",
		Name:        "Summer Linen Dress",
		Category:    "Dress",
		Description: "a flowing knee-length beige linen dress with short sleeves",
		Image:       "https://images.unsplash.com/photo-1515372039744-b8f02a3ae446?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "4",
		Name:        "Techwear Shell",
		Category:    "Street",
		Description: "a matte black technical shell jacket with cargo pants and utility straps",
		Image:       "https://images.unsplash.com/photo-1551028719-00167b16eac5?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "5",
		Name:        "Cozy Knit Set",
		Category:    "Knitwear",
		Description: "a chunky cream turtleneck sweater with matching wide-leg knit trousers",
		Image:       "https://images.unsplash.com/photo-1576871337622-98d48d1cf531?auto=format&fit=crop&w=200&q=80",
	},
	{
		ID:          "6",
		Name:        "Festival Boho",
		Category:    "Creative",
		Description: "a bohemian festival outfit with an embroidered vest, flared trousers and layered necklaces",
		Image:       "https://images.unsplash.com/photo-1469334031218-e382a71b716b?auto=format&fit=crop&w=200&q=80",
	},
}

// FallbackItems returns the built-in list for a domain, in provider order.
func FallbackItems(d *domain.Domain) []Item {
	var src []Item
	switch d.Key {
	case domain.Clothing.Key:
		src = clothingFallback
	default:
		src = hairstyleFallback
	}

	out := make([]Item, len(src))
	copy(out, src)
	return out
}
