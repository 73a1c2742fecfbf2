package review

// DemoProvider is the provider name recorded for demo reviews.
const DemoProvider = "demo"

// DemoFile is a bundled sample source file.
type DemoFile struct {
	Name    string
	Content string
}

// DemoFiles are the sample files offered by the demo command. The canned
// review describes the first one.
var DemoFiles = []DemoFile{
	{Name: "shopping-cart.js", Content: `function calculateTotal(items) {
    var total = 0;
    for (var i = 0; i < items.length; i++) {
        total += items[i].price * items[i].quantity;
    }
    return total;
}

// Usage
const cartItems = [
    { name: "Apple", price: 1.50, quantity: 5 },
    { name: "Banana", price: 0.75, quantity: 3 }
];

console.log("Total: $" + calculateTotal(cartItems));`},
	{Name: "find-duplicates.py", Content: `def find_duplicates(arr):
    seen = []
    duplicates = []

    for item in arr:
        if item in seen:
            if item not in duplicates:
                duplicates.append(item)
        else:
            seen.append(item)

    return duplicates

# Test the function
numbers = [1, 2, 3, 2, 4, 5, 3, 6]
print("Duplicates:", find_duplicates(numbers))`},
	{Name: "user-service.ts", Content: `interface User {
    id: number;
    name: string;
    email: string;
    age?: number;
}

class UserService {
    private users: User[] = [];

    addUser(user: User): void {
        // Missing validation
        this.users.push(user);
    }

    findUser(id: number): User | undefined {
        for (let i = 0; i < this.users.length; i++) {
            if (this.users[i].id === id) {
                return this.users[i];
            }
        }
        return undefined;
    }

    deleteUser(id: number): boolean {
        const index = this.users.findIndex(user => user.id === id);
        if (index !== -1) {
            this.users.splice(index, 1);
            return true;
        }
        return false;
    }
}`},
}

// DemoFileByName returns the bundled file with the given name.
func DemoFileByName(name string) (DemoFile, bool) {
	for _, f := range DemoFiles {
		if f.Name == name {
			return f, true
		}
	}
	return DemoFile{}, false
}

// DemoReview returns the canned sample review. Each call returns a fresh
// copy.
func DemoReview() Review {
	return Review{
		OverallScore: 72,
		Summary:      "The code shows good structure but has several areas for improvement including performance optimization, error handling, and modern syntax usage.",
		Issues: []Issue{
			{
				Type:        TypeWarning,
				Category:    CategoryPerformance,
				Line:        3,
				Message:     "Using var instead of const/let in modern JavaScript",
				Suggestion:  "Replace 'var' with 'const' or 'let' for better scoping and performance",
				CodeExample: "for (let i = 0; i < items.length; i++) {",
			},
			{
				Type:        TypeSuggestion,
				Category:    CategoryStyle,
				Line:        2,
				Message:     "Consider using array methods like reduce() for cleaner code",
				Suggestion:  "Use functional programming approach with reduce()",
				CodeExample: "return items.reduce((total, item) => total + (item.price * item.quantity), 0);",
			},
			{
				Type:        TypeError,
				Category:    CategoryBugs,
				Line:        1,
				Message:     "No input validation for the items parameter",
				Suggestion:  "Add validation to check if items is an array and handle edge cases",
				CodeExample: "if (!Array.isArray(items) || items.length === 0) return 0;",
			},
			{
				Type:        TypeWarning,
				Category:    CategoryPerformance,
				Line:        4,
				Message:     "Accessing array length in loop condition is inefficient",
				Suggestion:  "Cache the array length in a variable",
				CodeExample: "for (let i = 0, len = items.length; i < len; i++) {",
			},
		},
		Strengths: []string{
			"Function has a clear, descriptive name",
			"Logic is straightforward and easy to understand",
			"Proper return statement",
			"Good example usage provided",
		},
		Recommendations: []string{
			"Add input validation and error handling",
			"Use modern JavaScript features (const/let, arrow functions)",
			"Consider using array methods for functional programming style",
			"Add JSDoc comments for better documentation",
			"Consider edge cases like empty arrays or invalid data types",
		},
	}
}
