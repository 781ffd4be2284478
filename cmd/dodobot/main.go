// Command dodobot runs the Dota availability poll bot for a Telegram group.
package main

func main() {
	Execute()
}
