package messaging

// CartStreamName is the JetStream stream that carries all cart subjects.
const CartStreamName = "CART"

const CartUpdatedSubject = "cart.updated"
const CartClearedSubject = "cart.cleared"
