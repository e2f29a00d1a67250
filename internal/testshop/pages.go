package testshop

import (
	"html/template"
	"io"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}} | LazyLizard</title>
  <style>
    body { font-family: sans-serif; margin: 0 auto; max-width: 960px; }
    nav a { margin-right: 12px; }
    .product-item { display: block; padding: 8px; }
    .error-message { color: #b91c1c; }
  </style>
</head>
<body>
  <header>
    <a href="/en/"><img src="/static/logo.png" alt="LazyLizard" width="16" height="16"></a>
    <nav>
      <a href="/en/products">Product Listing</a>
      <a href="/en/cards/cart">Cart</a>
      <a href="/en/checkout">Checkout</a>
      <a href="/en/orders">Order History</a>
      <a class="cart-icon" href="/en/cards/cart">View cart ({{.CartCount}})</a>
    </nav>
  </header>
  <main>{{template "content" .}}</main>
  <script>
    function cartIDs() {
      const m = document.cookie.match(/(?:^|; )cart=([^;]*)/);
      return m && m[1] ? m[1].split('.') : [];
    }
    function saveCart(ids) {
      document.cookie = 'cart=' + ids.join('.') + '; path=/';
    }
  </script>
</body>
</html>{{end}}`

const homePage = `{{define "content"}}
  <h1>Welcome to LazyLizard</h1>
  {{if not .LoggedIn}}
  <form method="post" action="/en/login" class="quick-login">
    <input type="password" name="password" placeholder="Password">
    <button type="submit" name="login">Log in</button>
  </form>
  {{end}}
  <div class="product-list">
    {{range .Products}}<a class="product-item" href="/en/products/{{.ID}}">{{.Name}}</a>
    {{end}}
  </div>
{{end}}`

const loginPage = `{{define "content"}}
  <h1>Login</h1>
  {{with .Error}}<p class="error-message">{{.}}</p>{{end}}
  <form method="post" action="/en/login">
    <input type="text" name="username" placeholder="Username">
    <input type="password" name="password" placeholder="Password">
    <button type="submit" name="login">Log in</button>
  </form>
{{end}}`

const dashboardPage = `{{define "content"}}
  <h1>Buyer Dashboard</h1>
  <a href="/en/profile">Profile</a>
  <form method="post" action="/en/logout">
    <button type="submit" name="logout">Log out</button>
  </form>
{{end}}`

const productsPage = `{{define "content"}}
  <h1>Products</h1>
  <div class="product-list">
    {{range .Products}}<a class="product-item" href="/en/products/{{.ID}}">{{.Name}}</a>
    {{end}}
  </div>
{{end}}`

const productPage = `{{define "content"}}
  {{with .Product}}
  <h1>{{.Name}}</h1>
  <p class="item-price">{{printf "%.2f" .Price}}</p>
  <button type="button" name="add-to-cart" onclick="addToCart({{.ID}})">Add to cart</button>
  <p class="added" hidden>Added to cart</p>
  {{end}}
  <script>
    function addToCart(id) {
      const ids = cartIDs();
      ids.push(String(id));
      saveCart(ids);
      document.querySelector('.cart-icon').textContent = 'View cart (' + ids.length + ')';
      document.querySelector('.added').hidden = false;
    }
  </script>
{{end}}`

const cartPage = `{{define "content"}}
  <h1>Your cart</h1>
  <div class="cart-items">
    {{range .Items}}
    <div class="cart-item" data-id="{{.ID}}">
      <span class="item-name">{{.Name}}</span>
      <span class="item-price">{{printf "%.2f" .Price}}</span>
      <input type="text" inputmode="numeric" name="quantity" value="1" oninput="updateTotal()">
      <button type="button" class="remove-item" onclick="removeItem(this)">Remove</button>
    </div>
    {{end}}
  </div>
  <p>Total Price: <span class="total-price">{{printf "%.2f" .Total}}</span></p>
  <button type="button" name="checkout" onclick="checkout()">Checkout</button>
  <p class="error-message" hidden>Your cart is empty</p>
  <script>
    function updateTotal() {
      let total = 0;
      document.querySelectorAll('.cart-item').forEach(item => {
        const price = parseFloat(item.querySelector('.item-price').textContent);
        const qty = parseInt(item.querySelector('[name=quantity]').value || '0', 10);
        total += price * qty;
      });
      document.querySelector('.total-price').textContent = total.toFixed(2);
    }
    function removeItem(button) {
      const item = button.closest('.cart-item');
      const ids = cartIDs();
      ids.splice(ids.indexOf(item.dataset.id), 1);
      saveCart(ids);
      item.remove();
      updateTotal();
    }
    function checkout() {
      if (!document.querySelector('.cart-item')) {
        document.querySelector('.error-message').hidden = false;
        return;
      }
      location.href = '/en/checkout';
    }
  </script>
{{end}}`

const checkoutPage = `{{define "content"}}
  <h1>Checkout</h1>
  {{if .Items}}<p>{{len .Items}} item(s), total {{printf "%.2f" .Total}}</p>
  {{else}}<p class="cart-empty-error">Your cart is empty</p>{{end}}
{{end}}`

const ordersPage = `{{define "content"}}
  <h1>Order History</h1>
  <div class="order-list">
    <div class="order-item">order_id 1001 <span class="order-status">Shipped</span></div>
  </div>
  <a href="#" class="cancel-order" onclick="if (confirm('Cancel order 1001?')) { document.querySelector('.order-status').textContent = 'Cancelled'; } return false;">Cancel order</a>
{{end}}`

var pages = map[string]*template.Template{}

func init() {
	for name, content := range map[string]string{
		"home":      homePage,
		"login":     loginPage,
		"dashboard": dashboardPage,
		"products":  productsPage,
		"product":   productPage,
		"cart":      cartPage,
		"checkout":  checkoutPage,
		"orders":    ordersPage,
	} {
		t := template.Must(template.New(name).Parse(layout))
		pages[name] = template.Must(t.Parse(content))
	}
}

// view is the data every page template receives.
type view struct {
	Title     string
	LoggedIn  bool
	CartCount int
	Error     string
	Products  []Product
	Product   *Product
	Items     []Product
	Total     float64
}

func render(w io.Writer, page string, v view) error {
	return pages[page].ExecuteTemplate(w, "layout", v)
}
