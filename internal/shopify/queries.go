package shopify

const imageFragment = `
fragment image on Image {
  url
  altText
  width
  height
  transformedSrc(maxWidth: 800, maxHeight: 800, crop: CENTER)
}
`

const seoFragment = `
fragment seo on SEO {
  description
  title
}
`

const productFragment = `
fragment product on Product {
  id
  handle
  availableForSale
  title
  description
  descriptionHtml
  vendor
  options {
    id
    name
    values
  }
  priceRange {
    maxVariantPrice { amount currencyCode }
    minVariantPrice { amount currencyCode }
  }
  compareAtPriceRange {
    maxVariantPrice { amount currencyCode }
    minVariantPrice { amount currencyCode }
  }
  variants(first: 250) {
    edges {
      node {
        id
        title
        availableForSale
        selectedOptions { name value }
        price { amount currencyCode }
        compareAtPrice { amount currencyCode }
      }
    }
  }
  featuredImage { ...image }
  images(first: 20) {
    edges { node { ...image } }
  }
  collections(first: 20) {
    edges { node { handle title } }
  }
  seo { ...seo }
  tags
  updatedAt
}
` + imageFragment + seoFragment

const collectionFragment = `
fragment collection on Collection {
  handle
  title
  description
  seo { ...seo }
  updatedAt
}
` + seoFragment

const cartFragment = `
fragment cart on Cart {
  id
  checkoutUrl
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
    totalTaxAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        cost {
          totalAmount { amount currencyCode }
        }
        merchandise {
          ... on ProductVariant {
            id
            title
            selectedOptions { name value }
            price { amount currencyCode }
            product {
              id
              handle
              title
              featuredImage { ...image }
            }
          }
        }
      }
    }
  }
  totalQuantity
}
` + imageFragment

const pageInfoFields = `
pageInfo {
  hasNextPage
  hasPreviousPage
  endCursor
}
`

const getProductsQuery = `
query getProducts($sortKey: ProductSortKeys, $reverse: Boolean, $query: String, $cursor: String, $first: Int!) {
  products(sortKey: $sortKey, reverse: $reverse, query: $query, first: $first, after: $cursor) {
    ` + pageInfoFields + `
    edges { node { ...product } }
  }
}
` + productFragment

const getCollectionProductsQuery = `
query getCollectionProducts($handle: String!, $sortKey: ProductCollectionSortKeys, $reverse: Boolean, $first: Int!) {
  collection(handle: $handle) {
    products(sortKey: $sortKey, reverse: $reverse, first: $first) {
      ` + pageInfoFields + `
      edges { node { ...product } }
    }
  }
}
` + productFragment

const getCollectionsQuery = `
query getCollections {
  collections(first: 100, sortKey: TITLE) {
    edges { node { ...collection } }
  }
}
` + collectionFragment

const getCollectionQuery = `
query getCollection($handle: String!) {
  collection(handle: $handle) { ...collection }
}
` + collectionFragment

const getProductQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) { ...product }
}
` + productFragment

const getProductRecommendationsQuery = `
query getProductRecommendations($productId: ID!) {
  productRecommendations(productId: $productId) { ...product }
}
` + productFragment

const getHighestProductPriceQuery = `
query getHighestProductPrice {
  products(first: 1, sortKey: PRICE, reverse: true) {
    edges {
      node {
        variants(first: 1) {
          edges { node { price { amount currencyCode } } }
        }
      }
    }
  }
}
`

const getMenuQuery = `
query getMenu($handle: String!) {
  menu(handle: $handle) {
    items { title url }
  }
}
`

const pageFields = `
id
title
handle
body
bodySummary
seo { ...seo }
createdAt
updatedAt
`

const getPageQuery = `
query getPage($handle: String!) {
  pageByHandle(handle: $handle) {` + pageFields + `}
}
` + seoFragment

const getPagesQuery = `
query getPages {
  pages(first: 100) {
    edges { node {` + pageFields + `} }
  }
}
` + seoFragment

const getCartQuery = `
query getCart($cartId: ID!) {
  cart(id: $cartId) { ...cart }
}
` + cartFragment

const cartUserErrors = `
userErrors { code field message }
`

const createCartMutation = `
mutation createCart($lineItems: [CartLineInput!]) {
  cartCreate(input: { lines: $lineItems }) {
    cart { ...cart }
    ` + cartUserErrors + `
  }
}
` + cartFragment

const addToCartMutation = `
mutation addToCart($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...cart }
    ` + cartUserErrors + `
  }
}
` + cartFragment

const editCartItemsMutation = `
mutation editCartItems($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...cart }
    ` + cartUserErrors + `
  }
}
` + cartFragment

const removeFromCartMutation = `
mutation removeFromCart($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...cart }
    ` + cartUserErrors + `
  }
}
` + cartFragment

const customerUserErrors = `
customerUserErrors { code field message }
`

const createCustomerMutation = `
mutation customerCreate($input: CustomerCreateInput!) {
  customerCreate(input: $input) {
    customer {
      id
      firstName
      lastName
      email
      phone
      acceptsMarketing
    }
    ` + customerUserErrors + `
  }
}
`

const getCustomerAccessTokenMutation = `
mutation customerAccessTokenCreate($input: CustomerAccessTokenCreateInput!) {
  customerAccessTokenCreate(input: $input) {
    customerAccessToken {
      accessToken
      expiresAt
    }
    ` + customerUserErrors + `
  }
}
`

const getCustomerDetailsQuery = `
query getCustomer($input: String!) {
  customer(customerAccessToken: $input) {
    id
    firstName
    lastName
    email
    phone
    acceptsMarketing
  }
}
`
