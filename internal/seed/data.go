package seed

import "github.com/pmerino/gocatalog/internal/catalog/service"

// InitialProducts returns a copy of the bundled dataset inserted by Run.
func InitialProducts() []service.ProductCreateDto {
	data := make([]service.ProductCreateDto, len(initialProducts))
	copy(data, initialProducts)
	return data
}

// initialProducts is the bundled dataset inserted by Run. Slugs are derived
// from the titles.
var initialProducts = []service.ProductCreateDto{
	{
		Title:       "Men's Chill Crew Neck Sweatshirt",
		Description: "Introducing the Tesla Chill Collection. The Men's Chill Crew Neck Sweatshirt has a premium, heavyweight exterior and soft fleece interior for comfort in any season.",
		Price:       75,
		Stock:       7,
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"sweatshirt"},
		Images:      []string{"1740176-00-A_0_2000.jpg", "1740176-00-A_1.jpg"},
	},
	{
		Title:       "Men's Quilted Shirt Jacket",
		Description: "The Men's Quilted Shirt Jacket features a uniquely fit, quilted design for warmth and mobility in cold weather seasons.",
		Price:       200,
		Stock:       5,
		Sizes:       []string{"XS", "S", "M", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"jacket"},
		Images:      []string{"1740507-00-A_0_2000.jpg", "1740507-00-A_1.jpg"},
	},
	{
		Title:       "Men's Raven Lightweight Zip Up Bomber Jacket",
		Description: "Introducing the Tesla Raven Collection. The Men's Raven Lightweight Zip Up Bomber has a premium, modern silhouette made from a sustainable bamboo cotton blend.",
		Price:       130,
		Stock:       10,
		Sizes:       []string{"S", "M", "L", "XL", "XXL"},
		Gender:      "men",
		Tags:        []string{"shirt"},
		Images:      []string{"1740250-00-A_0_2000.jpg", "1740250-00-A_1.jpg"},
	},
	{
		Title:       "Women's Cropped Puffer Jacket",
		Description: "The Women's Cropped Puffer Jacket features a uniquely cropped silhouette for the perfect, modern style while on the go during the cozy season ahead.",
		Price:       225,
		Stock:       85,
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "women",
		Tags:        []string{"hoodie"},
		Images:      []string{"1654219-00-A_0_2000.jpg", "1654219-00-A_1.jpg"},
	},
	{
		Title:       "Women's Chill Half Zip Cropped Hoodie",
		Description: "Introducing the Tesla Chill Collection. The Women's Chill Half Zip Cropped Hoodie has a premium, soft fleece exterior and cropped silhouette.",
		Price:       130,
		Stock:       10,
		Sizes:       []string{"XS", "S", "M", "XXL"},
		Gender:      "women",
		Tags:        []string{"hoodie"},
		Images:      []string{"1740535-00-A_0_2000.jpg", "1740535-00-A_1.jpg"},
	},
	{
		Title:       "Women's T Logo Short Sleeve Scoop Neck Tee",
		Description: "Designed for style and comfort, the ultrasoft Women's T Logo Short Sleeve Scoop Neck Tee features a tonal 3D silicone-printed T logo on the left chest.",
		Price:       35,
		Stock:       30,
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "women",
		Tags:        []string{"shirt"},
		Images:      []string{"8765090-00-A_0_2000.jpg", "8765090-00-A_1.jpg"},
	},
	{
		Title:       "Kids Cybertruck Long Sleeve Tee",
		Description: "The Kids Cybertruck Long Sleeve Tee features the iconic Cybertruck graffiti wordmark in black, fitting the Tesla design language.",
		Price:       30,
		Stock:       10,
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "kid",
		Tags:        []string{"shirt"},
		Images:      []string{"1742694-00-A_1_2000.jpg", "1742694-00-A_3.jpg"},
	},
	{
		Title:       "Kids Racing Stripe Tee",
		Description: "The refreshed Kids Racing Stripe Tee is made from 100% Peruvian cotton, featuring a newly enhanced racing stripe with a brushed Tesla wordmark.",
		Price:       30,
		Stock:       10,
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "kid",
		Tags:        []string{"shirt"},
		Images:      []string{"8529312-00-A_0_2000.jpg", "8529312-00-A_1.jpg"},
	},
	{
		Title:       "3D Large Wordmark Pullover Hoodie",
		Description: "The Unisex 3D Large Wordmark Pullover Hoodie features soft fleece and an adjustable, jersey-lined hood for comfort and coverage.",
		Price:       70,
		Stock:       15,
		Sizes:       []string{"XS", "S", "XL", "XXL"},
		Gender:      "unisex",
		Tags:        []string{"hoodie"},
		Images:      []string{"8529107-00-A_0_2000.jpg", "8529107-00-A_1.jpg"},
	},
	{
		Title:       "Cybertruck Graffiti Hoodie",
		Description: "The Cybertruck Graffiti Hoodie features a signature fleece interior and the Cybertruck graffiti wordmark across the chest.",
		Price:       60,
		Stock:       13,
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "unisex",
		Tags:        []string{"hoodie"},
		Images:      []string{"7654420-00-A_0_2000.jpg", "7654420-00-A_1_2000.jpg"},
	},
}
