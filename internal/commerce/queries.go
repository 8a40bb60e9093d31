package commerce

// ProductByIDQuery fetches a product by its GID
const ProductByIDQuery = `
query getProductByID($id: ID!) {
  node(id: $id) {
    ... on Product {
      id
      title
      status
    }
  }
}
`

// ProductsQuery fetches products with variants, paginated
const ProductsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        status
        variants(first: 250) {
          edges {
            node {
              id
              sku
              title
              price
            }
          }
        }
      }
    }
  }
}
`
