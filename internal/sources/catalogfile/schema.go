package catalogfile

// File is the root of a local catalog file.
//
//	products:
//	  - id: "1"
//	    title: Mountain Bike Pro X1
//	    category: Mountain Bikes
//	    price: 1299.99
//	    comparePrice: 1499.99
//	    rating: 4.8
//	    reviews: 124
type File struct {
	Products []*ProductEntry `yaml:"products"`
}

// ProductEntry is one product as written in the file. Prices are read as
// strings so they keep their exact decimal value.
type ProductEntry struct {
	ID           string   `yaml:"id"`
	Handle       string   `yaml:"handle,omitempty"`
	Title        string   `yaml:"title"`
	Category     string   `yaml:"category,omitempty"`
	Vendor       string   `yaml:"vendor,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	Price        string   `yaml:"price"`
	ComparePrice string   `yaml:"comparePrice,omitempty"`
	Available    *bool    `yaml:"available,omitempty"`
	Image        string   `yaml:"image,omitempty"`
	Rating       *float64 `yaml:"rating,omitempty"`
	Reviews      int      `yaml:"reviews,omitempty"`
	New          *bool    `yaml:"new,omitempty"`
}
