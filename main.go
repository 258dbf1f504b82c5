package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"library-portal/configs"
	"library-portal/portal"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	var (
		dbPath   string
		inMemory bool
	)

	rootCmd := &cobra.Command{
		Use:   "portal",
		Short: "Interactive library membership portal",
		Long: "Browse the catalog, borrow and reserve physical books, read e-books,\n" +
			"and track notifications. Session state persists between runs unless\n" +
			"--memory is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.Load()
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			var storage portal.Storage
			if inMemory {
				storage = portal.NewMemoryStorage()
			} else {
				var err error
				storage, err = portal.OpenSQLiteStorage(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("opening storage: %w", err)
				}
			}
			defer storage.Close()

			run(storage, cfg)
			return nil
		},
	}
	rootCmd.Flags().StringVar(&dbPath, "db", "", "path to the portal database (overrides PORTAL_DB)")
	rootCmd.Flags().BoolVar(&inMemory, "memory", false, "keep all state in memory, nothing persisted")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func run(storage portal.Storage, cfg configs.Config) {
	catalog := portal.NewCatalogStore(portal.DefaultCatalog())
	session := portal.NewSessionStore(storage,
		portal.WithDemoCredentials(cfg.DemoUsername, cfg.DemoPassword))
	ui := portal.NewUIStore()
	defer ui.Dispose()

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the Library Membership Portal!")
	if user, ok := session.CurrentUser(); ok {
		fmt.Printf("Restored session for %s.\n", user.FullName)
	}

	for {
		if _, ok := session.CurrentUser(); ok {
			printMemberHelp(session)
		} else {
			fmt.Println("\nCommands: login, register, exit")
		}

		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		cmd := strings.TrimSpace(scanner.Text())

		_, loggedIn := session.CurrentUser()
		if !loggedIn {
			switch cmd {
			case "login":
				handleLogin(scanner, session, ui)
			case "register":
				handleRegister(scanner, session, ui)
			case "exit":
				fmt.Println("Goodbye!")
				return
			default:
				fmt.Println("Please log in first.")
			}
			printToast(ui)
			continue
		}

		switch cmd {
		case "catalog":
			handleCatalog(catalog)
		case "ebooks":
			handleEbooks(catalog)
		case "search":
			handleSearch(scanner, catalog)
		case "book":
			handleBookDetail(scanner, catalog, session, ui)
		case "my books":
			handleMyBooks(catalog, session)
		case "borrow":
			handleBorrow(scanner, catalog, session, ui)
		case "return":
			handleReturn(scanner, catalog, session, ui)
		case "reserve":
			handleReserve(scanner, catalog, session, ui)
		case "cancel reservation":
			handleCancelReservation(scanner, catalog, session, ui)
		case "notifications":
			handleNotifications(session)
		case "read notification":
			handleReadNotification(scanner, session)
		case "profile":
			handleProfile(session)
		case "logout":
			session.Logout()
			ui.ShowToast("Sesión cerrada exitosamente", portal.ToastSuccess, 0)
		case "exit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
		printToast(ui)
	}
}

func printMemberHelp(session *portal.SessionStore) {
	fmt.Println("\nCommands:")
	fmt.Println("  Browse: catalog, ebooks, search, book, my books")
	fmt.Println("  Circulation: borrow, return, reserve, cancel reservation")
	if unread := session.UnreadCount(); unread > 0 {
		fmt.Printf("  Account: notifications (%d unread), read notification, profile, logout\n", unread)
	} else {
		fmt.Println("  Account: notifications, read notification, profile, logout")
	}
	fmt.Println("  System: exit")
}

// printToast renders the active toast without consuming it; the toast stays
// until its dismiss timer clears it.
func printToast(ui *portal.UIStore) {
	if toast, ok := ui.Toast(); ok {
		fmt.Printf("[%s] %s\n", toast.Type, toast.Message)
	}
}

func handleLogin(sc *bufio.Scanner, session *portal.SessionStore, ui *portal.UIStore) {
	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	if err := session.Login(username, password); err != nil {
		ui.ShowToast("Usuario o contraseña incorrectos", portal.ToastError, 0)
		return
	}
	ui.ShowToast("Iniciaste sesión correctamente", portal.ToastSuccess, 0)
}

func handleRegister(sc *bufio.Scanner, session *portal.SessionStore, ui *portal.UIStore) {
	fmt.Print("Full name: ")
	if !sc.Scan() {
		return
	}
	fullName := strings.TrimSpace(sc.Text())

	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	fmt.Print("Email: ")
	if !sc.Scan() {
		return
	}
	email := strings.TrimSpace(sc.Text())

	fmt.Print("Department: ")
	if !sc.Scan() {
		return
	}
	department := strings.TrimSpace(sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	if password == "" {
		fmt.Println("Error: Password cannot be empty")
		return
	}

	user := portal.User{
		Username:    username,
		FullName:    fullName,
		Email:       email,
		Department:  department,
		MemberSince: "2026",
	}
	if err := session.RegisterUser(user, password); err != nil {
		ui.ShowToast(fmt.Sprintf("No se pudo registrar: %v", err), portal.ToastError, 0)
		return
	}
	ui.ShowToast(fmt.Sprintf("Usuario %s registrado, ya puede iniciar sesión", username), portal.ToastSuccess, 0)
}

func handleCatalog(catalog *portal.CatalogStore) {
	books := catalog.PhysicalBooks()
	fmt.Printf("Physical books (%d), categories: %s\n",
		len(books), strings.Join(catalog.Categories(), ", "))
	printBookTable(books)
}

func handleEbooks(catalog *portal.CatalogStore) {
	books := catalog.Ebooks()
	fmt.Printf("E-books (%d):\n", len(books))
	printBookTable(books)
}

func handleSearch(sc *bufio.Scanner, catalog *portal.CatalogStore) {
	fmt.Print("Query: ")
	if !sc.Scan() {
		return
	}
	query := strings.TrimSpace(sc.Text())

	fmt.Printf("Category (%s, or Enter for all): ", strings.Join(catalog.Categories(), ", "))
	if !sc.Scan() {
		return
	}
	category := strings.TrimSpace(sc.Text())

	fmt.Print("Type (physical/ebook, or Enter for all): ")
	if !sc.Scan() {
		return
	}
	var bookType portal.BookType
	switch strings.TrimSpace(sc.Text()) {
	case "physical":
		bookType = portal.Physical
	case "ebook":
		bookType = portal.Ebook
	}

	books := catalog.Search(query, category, bookType)
	if len(books) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s):\n", len(books))
	printBookTable(books)
}

func handleBookDetail(sc *bufio.Scanner, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	id, ok := promptBookID(sc)
	if !ok {
		return
	}
	book, found := catalog.BookByID(id)
	if !found {
		ui.ShowToast("El libro no fue encontrado", portal.ToastError, 0)
		return
	}

	ui.OpenModal(book.ID)
	defer ui.CloseModal()

	fmt.Printf("\n%s\n%s | %s\n", book.Title, book.Author, book.Category)
	fmt.Printf("ISBN: %s\nCover: %s\n\n%s\n\n", book.ISBN, book.Cover, book.Description)

	actions := availableActions(book, session)
	if len(actions) == 0 {
		fmt.Println("No actions available for this book. Press Enter to close.")
		sc.Scan()
		return
	}

	fmt.Printf("Actions: %s, or Enter to close\n> ", strings.Join(actions, ", "))
	if !sc.Scan() {
		return
	}
	switch strings.TrimSpace(sc.Text()) {
	case "borrow":
		doBorrow(book, catalog, session, ui)
	case "return":
		doReturn(book, catalog, session, ui)
	case "reserve":
		doReserve(book, catalog, session, ui)
	case "cancel":
		doCancel(book, catalog, session, ui)
	}
}

// availableActions mirrors the detail view's mutual exclusivity: borrow and
// reserve are offered together while the book is available and unheld; once
// held, only the matching release action shows.
func availableActions(book portal.Book, session *portal.SessionStore) []string {
	if book.Type != portal.Physical {
		return nil
	}
	borrowed := containsInt(session.BorrowedBooks(), book.ID)
	reserved := containsInt(session.ReservedBooks(), book.ID)
	switch {
	case borrowed:
		return []string{"return"}
	case reserved:
		return []string{"cancel"}
	case book.Available:
		return []string{"borrow", "reserve"}
	default:
		return nil
	}
}

func handleMyBooks(catalog *portal.CatalogStore, session *portal.SessionStore) {
	borrowed := catalog.BooksByIDs(session.BorrowedBooks())
	reserved := catalog.BooksByIDs(session.ReservedBooks())

	fmt.Printf("Borrowed (%d):\n", len(borrowed))
	printBookTable(borrowed)
	fmt.Printf("Reserved (%d):\n", len(reserved))
	printBookTable(reserved)
}

func handleBorrow(sc *bufio.Scanner, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	id, ok := promptBookID(sc)
	if !ok {
		return
	}
	book, found := catalog.BookByID(id)
	if !found {
		ui.ShowToast("El libro no fue encontrado", portal.ToastError, 0)
		return
	}
	doBorrow(book, catalog, session, ui)
}

func doBorrow(book portal.Book, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	if book.Type != portal.Physical {
		ui.ShowToast("Los libros electrónicos no se prestan, se leen en línea", portal.ToastInfo, 0)
		return
	}
	if !book.Available || containsInt(session.BorrowedBooks(), book.ID) {
		ui.ShowToast("Este libro no está disponible", portal.ToastWarning, 0)
		return
	}
	session.BorrowBook(book.ID)
	catalog.SetAvailability(book.ID, false, "")
	ui.ShowToast(fmt.Sprintf("Has tomado prestado \"%s\"", book.Title), portal.ToastSuccess, 0)
}

func handleReturn(sc *bufio.Scanner, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	id, ok := promptBookID(sc)
	if !ok {
		return
	}
	book, found := catalog.BookByID(id)
	if !found {
		ui.ShowToast("El libro no fue encontrado", portal.ToastError, 0)
		return
	}
	doReturn(book, catalog, session, ui)
}

func doReturn(book portal.Book, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	if !containsInt(session.BorrowedBooks(), book.ID) {
		ui.ShowToast("No tienes este libro en préstamo", portal.ToastWarning, 0)
		return
	}
	session.ReturnBook(book.ID)
	catalog.SetAvailability(book.ID, true, "")
	ui.ShowToast(fmt.Sprintf("Has devuelto \"%s\"", book.Title), portal.ToastSuccess, 0)
}

func handleReserve(sc *bufio.Scanner, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	id, ok := promptBookID(sc)
	if !ok {
		return
	}
	book, found := catalog.BookByID(id)
	if !found {
		ui.ShowToast("El libro no fue encontrado", portal.ToastError, 0)
		return
	}
	doReserve(book, catalog, session, ui)
}

func doReserve(book portal.Book, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	if book.Type != portal.Physical {
		ui.ShowToast("Los libros electrónicos no se reservan", portal.ToastInfo, 0)
		return
	}
	if containsInt(session.ReservedBooks(), book.ID) || containsInt(session.BorrowedBooks(), book.ID) {
		ui.ShowToast("Ya tienes este libro", portal.ToastWarning, 0)
		return
	}
	user, _ := session.CurrentUser()
	session.ReserveBook(book.ID)
	catalog.SetAvailability(book.ID, book.Available, user.Username)
	ui.ShowToast(fmt.Sprintf("Has reservado \"%s\"", book.Title), portal.ToastSuccess, 0)
}

func handleCancelReservation(sc *bufio.Scanner, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	id, ok := promptBookID(sc)
	if !ok {
		return
	}
	book, found := catalog.BookByID(id)
	if !found {
		ui.ShowToast("El libro no fue encontrado", portal.ToastError, 0)
		return
	}
	doCancel(book, catalog, session, ui)
}

func doCancel(book portal.Book, catalog *portal.CatalogStore, session *portal.SessionStore, ui *portal.UIStore) {
	if !containsInt(session.ReservedBooks(), book.ID) {
		ui.ShowToast("No tienes una reserva para este libro", portal.ToastWarning, 0)
		return
	}
	session.CancelReservation(book.ID)
	catalog.SetAvailability(book.ID, book.Available, "")
	ui.ShowToast(fmt.Sprintf("Has cancelado la reserva de \"%s\"", book.Title), portal.ToastWarning, 0)
}

func handleNotifications(session *portal.SessionStore) {
	notifications := session.Notifications()
	if len(notifications) == 0 {
		fmt.Println("No notifications.")
		return
	}
	fmt.Printf("%-15s %-18s %-6s %s\n", "ID", "Timestamp", "Read", "Message")
	fmt.Println(strings.Repeat("-", 90))
	for _, n := range notifications {
		read := "no"
		if n.Read {
			read = "yes"
		}
		fmt.Printf("%-15d %-18s %-6s %s\n", n.ID, n.Timestamp, read, n.Message)
	}
}

func handleReadNotification(sc *bufio.Scanner, session *portal.SessionStore) {
	fmt.Print("Notification ID: ")
	if !sc.Scan() {
		return
	}
	idStr := strings.TrimSpace(sc.Text())
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		fmt.Printf("Invalid notification ID: %s\n", idStr)
		return
	}
	session.MarkNotificationAsRead(id)
}

func handleProfile(session *portal.SessionStore) {
	user, ok := session.CurrentUser()
	if !ok {
		return
	}
	fmt.Printf("%s (@%s)\n", user.FullName, user.Username)
	fmt.Printf("Email:        %s\n", user.Email)
	fmt.Printf("Department:   %s\n", user.Department)
	fmt.Printf("Member since: %s\n", user.MemberSince)
	fmt.Printf("Avatar:       %s\n", user.Avatar)
	fmt.Printf("Borrowed: %d | Reserved: %d | Unread notifications: %d\n",
		len(session.BorrowedBooks()), len(session.ReservedBooks()), session.UnreadCount())
}

func promptBookID(sc *bufio.Scanner) (int, bool) {
	fmt.Print("Book ID: ")
	if !sc.Scan() {
		return 0, false
	}
	idStr := strings.TrimSpace(sc.Text())
	id, err := strconv.Atoi(idStr)
	if err != nil {
		fmt.Printf("Invalid book ID: %s\n", idStr)
		return 0, false
	}
	return id, true
}

func printBookTable(books []portal.Book) {
	if len(books) == 0 {
		fmt.Println("  (none)")
		return
	}
	fmt.Printf("%-5s %-35s %-25s %-10s %-12s %s\n", "ID", "Title", "Author", "Type", "Available", "Reserved By")
	fmt.Println(strings.Repeat("-", 110))
	for _, b := range books {
		avail := "-"
		if b.Type == portal.Physical {
			if b.Available {
				avail = "yes"
			} else {
				avail = "no"
			}
		}
		reservedBy := b.ReservedBy
		if reservedBy == "" {
			reservedBy = "-"
		}
		fmt.Printf("%-5d %-35s %-25s %-10s %-12s %s\n",
			b.ID, truncateString(b.Title, 35), truncateString(b.Author, 25), b.Type, avail, reservedBy)
	}
}

func containsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// truncateString shortens s to maxLength characters, counting runes so a
// multibyte character is never split mid-sequence.
func truncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength-3]) + "..."
}
