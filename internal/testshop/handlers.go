package testshop

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	sessionCookie = "session"
	cartCookie    = "cart"
)

func loggedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value != ""
}

// cartItems reads the product ids the browser stored in the cart cookie.
func cartItems(r *http.Request) []Product {
	c, err := r.Cookie(cartCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	var items []Product
	for _, raw := range strings.Split(c.Value, ".") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if p, ok := productByID(id); ok {
			items = append(items, p)
		}
	}
	return items
}

func productByID(id int) (Product, bool) {
	for _, p := range Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	v.LoggedIn = loggedIn(r)
	v.CartCount = len(cartItems(r))
	var buf bytes.Buffer
	if err := render(&buf, name, v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "home", view{Title: "Home", Products: Products})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "login", view{Title: "Login"})
}

// handleLogin accepts the configured password with any username, which
// serves both the full and the password-only form.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("password") != s.cfg.Password {
		s.page(w, r, http.StatusUnauthorized, "login", view{
			Title: "Login",
			Error: "Invalid credentials: invalid username or password",
		})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "1", Path: "/"})
	http.Redirect(w, r, "/en/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/en/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !loggedIn(r) {
		http.Redirect(w, r, "/en/login", http.StatusSeeOther)
		return
	}
	s.page(w, r, http.StatusOK, "dashboard", view{Title: "Dashboard"})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "products", view{Title: "Products", Products: Products})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, ok := productByID(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.page(w, r, http.StatusOK, "product", view{Title: p.Name, Product: &p})
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	items := cartItems(r)
	s.page(w, r, http.StatusOK, "cart", view{Title: "Cart", Items: items, Total: total(items)})
}

// handleCartAdd is the JSON endpoint the load profile posts to.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if _, ok := productByID(req.ProductID); !ok || req.Quantity <= 0 {
		http.Error(w, "unknown product or quantity", http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "product_id": req.ProductID, "quantity": req.Quantity})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	items := cartItems(r)
	s.page(w, r, http.StatusOK, "checkout", view{Title: "Checkout", Items: items, Total: total(items)})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "orders", view{Title: "Order History"})
}

func total(items []Product) float64 {
	var sum float64
	for _, p := range items {
		sum += p.Price
	}
	return sum
}

var logoPNG = func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{34, 139, 34, 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}()

func handleLogo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(logoPNG)
}
